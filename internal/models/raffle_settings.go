package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RaffleSettings is one immutable settings row. Updating settings deactivates
// the previous row and inserts a new active one, so raffles created earlier
// keep the snapshot they were created with.
type RaffleSettings struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ParticipantsLimit      int                `bson:"participantsLimit" json:"participants_limit"`
	BetAmount              int64              `bson:"betAmount" json:"bet_amount"`
	WinnerPercent          int                `bson:"winnerPercent" json:"winner_percent"`
	OrganizerPercent       int                `bson:"organizerPercent" json:"organizer_percent"`
	MaxRaffleDurationHours int                `bson:"maxRaffleDurationHours" json:"max_raffle_duration_hours"`
	IsActive               bool               `bson:"isActive" json:"is_active"`
	CreatedAt              time.Time          `bson:"createdAt" json:"created_at"`
}

// Validate checks the settings against the allowed ranges. Invalid settings
// are a configuration error: raffle creation must not guess defaults.
func (s *RaffleSettings) Validate() error {
	if s.ParticipantsLimit < 2 || s.ParticipantsLimit > 1000 {
		return fmt.Errorf("%w: participants limit must be between 2 and 1000", ErrInvalidSettings)
	}
	if s.BetAmount < 1 || s.BetAmount > 100 {
		return fmt.Errorf("%w: bet amount must be between 1 and 100 stars", ErrInvalidSettings)
	}
	if s.WinnerPercent+s.OrganizerPercent != 100 {
		return fmt.Errorf("%w: winner and organizer percentages must sum to 100", ErrInvalidSettings)
	}
	if s.WinnerPercent < 0 || s.OrganizerPercent < 0 {
		return fmt.Errorf("%w: percentages must not be negative", ErrInvalidSettings)
	}
	return nil
}
