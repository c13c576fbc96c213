package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipationStatus represents the status of a participation. Failed
// admission attempts are never persisted, so confirmed is the only value.
type ParticipationStatus string

const (
	ParticipationStatusConfirmed ParticipationStatus = "confirmed"
)

// Participation is a single user's confirmed entry (stake) into a raffle.
// A compound unique index on (raffleId, userId) guarantees at most one
// participation per user per raffle.
type Participation struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	RaffleID primitive.ObjectID  `bson:"raffleId" json:"raffle_id"`
	UserID   int64               `bson:"userId" json:"user_id"` // Telegram user ID
	Amount   int64               `bson:"amount" json:"amount"`
	Status   ParticipationStatus `bson:"status" json:"status"`
	PlacedAt time.Time           `bson:"placedAt" json:"placed_at"`
}
