package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LedgerEntryType classifies a balance-affecting event.
type LedgerEntryType string

const (
	LedgerEntryBet    LedgerEntryType = "bet"
	LedgerEntryWin    LedgerEntryType = "win"
	LedgerEntryRefund LedgerEntryType = "refund"
	LedgerEntryFee    LedgerEntryType = "fee"
)

// LedgerEntry is an immutable record of a balance-affecting event in stars.
// Amount is signed: negative means the user pays in, positive means the user
// (or the operator, when UserID is nil) receives. For a completed raffle the
// entries sum to zero; for a cancelled raffle the bet and refund entries
// cancel out.
type LedgerEntry struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          *int64              `bson:"userId" json:"user_id"` // nil = operator
	Amount          int64               `bson:"amount" json:"amount"`
	Type            LedgerEntryType     `bson:"type" json:"type"`
	RaffleID        *primitive.ObjectID `bson:"raffleId,omitempty" json:"raffle_id,omitempty"`
	ParticipationID *primitive.ObjectID `bson:"participationId,omitempty" json:"participation_id,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"created_at"`
}
