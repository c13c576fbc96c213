package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RaffleStatus represents the lifecycle state of a raffle. Transitions are
// monotonic: active -> completed or active -> cancelled, both terminal.
type RaffleStatus string

const (
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusCompleted RaffleStatus = "completed"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

// IsTerminal reports whether the status is one of the terminal states.
func (s RaffleStatus) IsTerminal() bool {
	return s == RaffleStatusCompleted || s == RaffleStatusCancelled
}

// Raffle represents one round of the game: fixed capacity, fixed stake,
// terminates in exactly one winner or a full refund. The winner/organizer
// split is snapshotted from the active settings at creation time so a
// settings change never drifts the payout of an in-flight raffle.
type Raffle struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RequiredParticipants int                `bson:"requiredParticipants" json:"required_participants"`
	BetAmount            int64              `bson:"betAmount" json:"bet_amount"`
	CurrentParticipants  int                `bson:"currentParticipants" json:"current_participants"`
	TotalPot             int64              `bson:"totalPot" json:"total_pot"`
	WinnerPercent        int                `bson:"winnerPercent" json:"winner_percent"`
	OrganizerPercent     int                `bson:"organizerPercent" json:"organizer_percent"`
	Status               RaffleStatus       `bson:"status" json:"status"`
	WinnerID             int64              `bson:"winnerId,omitempty" json:"winner_id,omitempty"`
	WinnerAmount         int64              `bson:"winnerAmount,omitempty" json:"winner_amount,omitempty"`
	OrganizerAmount      int64              `bson:"organizerAmount,omitempty" json:"organizer_amount,omitempty"`
	RandomSeed           string             `bson:"randomSeed,omitempty" json:"random_seed,omitempty"`
	CancelReason         string             `bson:"cancelReason,omitempty" json:"cancel_reason,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt" json:"created_at"`
	CompletedAt          time.Time          `bson:"completedAt,omitempty" json:"completed_at,omitempty"`
}

// IsFull reports whether the raffle has reached its configured capacity.
func (r *Raffle) IsFull() bool {
	return r.CurrentParticipants >= r.RequiredParticipants
}

// ProgressPercentage returns the fill level of the raffle for display, capped
// at 100. Terminal raffles always report 100.
func (r *Raffle) ProgressPercentage() float64 {
	if r.Status.IsTerminal() {
		return 100
	}
	if r.RequiredParticipants == 0 {
		return 0
	}
	pct := float64(r.CurrentParticipants) / float64(r.RequiredParticipants) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// SplitPot divides the pot between winner and organizer using the snapshotted
// percentages. The winner gets the floored share and the organizer takes the
// remainder, so the two always sum to the pot exactly.
func (r *Raffle) SplitPot() (winnerAmount, organizerAmount int64) {
	winnerAmount = r.TotalPot * int64(r.WinnerPercent) / 100
	organizerAmount = r.TotalPot - winnerAmount
	return winnerAmount, organizerAmount
}

// RaffleStats holds aggregate raffle statistics for reporting.
type RaffleStats struct {
	TotalRaffles       int64   `bson:"totalRaffles" json:"total_raffles"`
	CompletedRaffles   int64   `bson:"completedRaffles" json:"completed_raffles"`
	CancelledRaffles   int64   `bson:"cancelledRaffles" json:"cancelled_raffles"`
	ActiveRaffles      int64   `bson:"activeRaffles" json:"active_raffles"`
	TotalVolume        int64   `bson:"totalVolume" json:"total_volume"`
	TotalFees          int64   `bson:"totalFees" json:"total_fees"`
	AvgParticipants    float64 `bson:"avgParticipants" json:"avg_participants"`
	UniqueParticipants int64   `bson:"-" json:"unique_participants"`
}
