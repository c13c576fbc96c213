package models

import "time"

// User represents a Telegram player. TelegramID is the natural key; the row
// is upserted from verified WebApp init data on every authenticated request.
type User struct {
	TelegramID   int64     `bson:"telegramId" json:"telegram_id"`
	Username     string    `bson:"username,omitempty" json:"username,omitempty"`
	FirstName    string    `bson:"firstName" json:"first_name"`
	LastName     string    `bson:"lastName,omitempty" json:"last_name,omitempty"`
	LanguageCode string    `bson:"languageCode" json:"language_code"`
	IsActive     bool      `bson:"isActive" json:"is_active"`
	LastActive   time.Time `bson:"lastActive" json:"last_active"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updated_at"`
}

// UserStats holds per-user betting statistics derived from the ledger.
type UserStats struct {
	TelegramID    int64  `json:"telegram_id"`
	Username      string `json:"username,omitempty"`
	FirstName     string `json:"first_name"`
	TotalBets     int64  `json:"total_bets"`
	Wins          int64  `json:"wins"`
	TotalWinnings int64  `json:"total_winnings"`
	TotalSpent    int64  `json:"total_spent"`
}
