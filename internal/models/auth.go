package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminLoginRequest defines the structure for admin login requests.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TelegramLoginRequest carries raw Telegram WebApp init data for verification.
type TelegramLoginRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

// AdminUser represents an operator account for the admin endpoints, stored in
// a separate collection from Telegram players.
type AdminUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, omitted from JSON
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// TelegramUser is the user payload embedded in verified WebApp init data.
type TelegramUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
}
