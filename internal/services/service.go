package services

import (
	"context"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BetResult is the outcome of a successful bet. Completed reports that the
// raffle reached the completed status, in which case the winner fields are
// populated. A bet that fills the last slot of a raffle a concurrent cancel
// beat to the terminal state yields Completed == false with the cancelled
// raffle attached.
type BetResult struct {
	Raffle        *models.Raffle          `json:"raffle"`
	Participation *models.Participation   `json:"participation,omitempty"`
	Completed     bool                    `json:"completed"`
	Winner        *models.Participation   `json:"winner,omitempty"`
	Participants  []*models.Participation `json:"participants,omitempty"`
}

// CancelResult is the outcome of a raffle cancellation.
type CancelResult struct {
	Raffle       *models.Raffle          `json:"raffle"`
	Participants []*models.Participation `json:"participants"`
	Refunded     int                     `json:"refunded"`
}

// ParticipationCheck reports whether a user may join the current raffle.
type ParticipationCheck struct {
	CanParticipate bool           `json:"can_participate"`
	Reason         string         `json:"reason,omitempty"`
	Raffle         *models.Raffle `json:"raffle,omitempty"`
}

// RaffleService is the raffle lifecycle engine: it admits participants,
// guarantees each raffle completes exactly once, and rolls an in-flight
// raffle back on cancellation.
type RaffleService interface {
	PlaceBet(ctx context.Context, userID int64) (*BetResult, error)
	CancelRaffle(ctx context.Context, raffleID primitive.ObjectID, reason string) (*CancelResult, error)
	GetCurrentRaffle(ctx context.Context) (*models.Raffle, error)
	GetRaffle(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	GetParticipants(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Participation, error)
	GetHistory(ctx context.Context, limit, offset int) ([]*models.Raffle, error)
	GetStatistics(ctx context.Context) (*models.RaffleStats, error)
	CanParticipate(ctx context.Context, userID int64) (*ParticipationCheck, error)
}

// SettingsService manages the active raffle settings snapshot.
type SettingsService interface {
	GetSettings(ctx context.Context) (*models.RaffleSettings, error)
	UpdateSettings(ctx context.Context, settings *models.RaffleSettings) (*models.RaffleSettings, error)
}

// UserService manages Telegram player accounts.
type UserService interface {
	UpsertFromTelegram(ctx context.Context, tu *models.TelegramUser) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetStats(ctx context.Context, telegramID int64) (*models.UserStats, error)
	CountActive(ctx context.Context) (int64, error)
	CountTotal(ctx context.Context) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// AuthService issues JWTs for admins and Telegram players.
type AuthService interface {
	AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (string, *models.AdminUser, error)
	TelegramLogin(ctx context.Context, initData string) (string, *models.User, error)
}

// NotificationService delivers raffle lifecycle events to collaborators.
// Delivery is at-most-once best effort: a failure must never roll back the
// already-committed raffle state.
type NotificationService interface {
	RaffleCompleted(ctx context.Context, raffle *models.Raffle, winner *models.Participation, participants []*models.Participation) error
	RaffleCancelled(ctx context.Context, raffle *models.Raffle, participants []*models.Participation, reason string) error
}
