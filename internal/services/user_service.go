package services

import (
	"context"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"golang.org/x/exp/slog"
)

// userService implements UserService.
type userService struct {
	userRepo   repositories.UserRepository
	ledgerRepo repositories.LedgerRepository
	logger     *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, ledgerRepo repositories.LedgerRepository, logger *slog.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// UpsertFromTelegram creates or refreshes the player row from verified
// WebApp init data.
func (s *userService) UpsertFromTelegram(ctx context.Context, tu *models.TelegramUser) (*models.User, error) {
	return s.userRepo.Upsert(ctx, tu)
}

// GetByTelegramID returns the player with the given Telegram ID, or nil when
// unknown.
func (s *userService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.userRepo.FindByTelegramID(ctx, telegramID)
}

// GetStats derives per-user betting statistics from the ledger. Bets and wins
// are counted from the entry types; refunded bets still count as bets but not
// as spend, since the refund entry cancels the stake.
func (s *userService) GetStats(ctx context.Context, telegramID int64) (*models.UserStats, error) {
	user, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	stats := &models.UserStats{TelegramID: telegramID}
	if user != nil {
		stats.Username = user.Username
		stats.FirstName = user.FirstName
	}

	entries, err := s.ledgerRepo.FindByUserID(ctx, telegramID, 0, 0)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		switch e.Type {
		case models.LedgerEntryBet:
			stats.TotalBets++
			stats.TotalSpent += -e.Amount
		case models.LedgerEntryWin:
			stats.Wins++
			stats.TotalWinnings += e.Amount
		case models.LedgerEntryRefund:
			stats.TotalSpent -= e.Amount
		}
	}
	return stats, nil
}

// CountActive returns the number of players active within the last day.
func (s *userService) CountActive(ctx context.Context) (int64, error) {
	return s.userRepo.CountActive(ctx)
}

// CountTotal returns the total number of players.
func (s *userService) CountTotal(ctx context.Context) (int64, error) {
	return s.userRepo.CountTotal(ctx)
}

// FindAll returns a page of players, most recently created first.
func (s *userService) FindAll(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.userRepo.FindAll(ctx, limit, offset)
}
