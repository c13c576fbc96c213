package repositories

import (
	"context"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdmitResult is the outcome of a successful atomic admission.
type AdmitResult struct {
	Raffle        *models.Raffle
	Participation *models.Participation
	// NowFull is true when this admission filled the last slot. At most one
	// admission per raffle observes NowFull == true.
	NowFull bool
}

// RaffleRepository defines the interface for raffle data operations. It
// exclusively owns writes to the raffles, participations and ledger
// collections; each mutating operation is a single atomic transaction.
type RaffleRepository interface {
	// GetActiveRaffle returns the single active raffle, or nil when none
	// exists. At most one active raffle can exist at any time, enforced by
	// a partial unique index.
	GetActiveRaffle(ctx context.Context) (*models.Raffle, error)

	// CreateRaffle inserts a new active raffle from a settings snapshot.
	// Returns models.ErrActiveRaffleExists when a concurrent creation won.
	CreateRaffle(ctx context.Context, settings *models.RaffleSettings) (*models.Raffle, error)

	// FindByID returns the raffle with the given ID, or
	// models.ErrRaffleNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)

	// TryAdmit atomically admits a user: it inserts the participation,
	// increments the participant count and pot under the capacity guard,
	// and appends the bet ledger entry. Domain outcomes:
	// models.ErrAlreadyParticipated, models.ErrRaffleFull,
	// models.ErrRaffleNotActive.
	TryAdmit(ctx context.Context, raffleID primitive.ObjectID, userID int64, amount int64) (*AdmitResult, error)

	// TryComplete atomically transitions the raffle from active to
	// completed, stores the winner fields and seed, and appends the win and
	// fee ledger entries. Returns models.ErrRaffleTerminal when the raffle
	// is no longer active: this is the exactly-once completion guard.
	TryComplete(ctx context.Context, raffleID primitive.ObjectID, winnerID int64, winnerAmount, organizerAmount int64, randomSeed string) (*models.Raffle, error)

	// Cancel atomically transitions the raffle from active to cancelled and
	// appends one refund ledger entry per participation. Returns the
	// refunded participations, or models.ErrRaffleTerminal.
	Cancel(ctx context.Context, raffleID primitive.ObjectID, reason string) ([]*models.Participation, error)

	// GetParticipants returns the raffle's confirmed participations ordered
	// by placement time, ties broken by insertion ID. This ordering is
	// load-bearing for winner selection determinism.
	GetParticipants(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Participation, error)

	// HasParticipation reports whether the user already holds a
	// participation in the raffle. Read-only; admission re-checks under the
	// unique index regardless.
	HasParticipation(ctx context.Context, raffleID primitive.ObjectID, userID int64) (bool, error)

	// GetHistory returns terminal raffles ordered by completion time
	// descending.
	GetHistory(ctx context.Context, limit, offset int) ([]*models.Raffle, error)

	// GetStats returns aggregate raffle statistics.
	GetStats(ctx context.Context) (*models.RaffleStats, error)
}

// LedgerRepository defines the read side of the append-only ledger. Writes
// happen only inside the raffle repository's transactions.
type LedgerRepository interface {
	FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.LedgerEntry, error)
	FindByRaffleID(ctx context.Context, raffleID primitive.ObjectID) ([]*models.LedgerEntry, error)
	// SumByRaffleID returns the signed sum of all entries for a raffle; zero
	// for every completed raffle (conservation audit).
	SumByRaffleID(ctx context.Context, raffleID primitive.ObjectID) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*models.LedgerEntry, error)
}

// UserRepository defines the interface for Telegram user data operations.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.TelegramUser) (*models.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateLastActive(ctx context.Context, telegramID int64) error
	CountActive(ctx context.Context) (int64, error)
	CountTotal(ctx context.Context) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// SettingsRepository defines the interface for raffle settings operations.
type SettingsRepository interface {
	// GetActive returns the single active settings row, or
	// models.ErrNoActiveSettings.
	GetActive(ctx context.Context) (*models.RaffleSettings, error)
	// Update deactivates the current settings and inserts a new active row.
	Update(ctx context.Context, settings *models.RaffleSettings) (*models.RaffleSettings, error)
}

// AdminUserRepository defines the interface for admin account operations.
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
