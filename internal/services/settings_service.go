package services

import (
	"context"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"golang.org/x/exp/slog"
)

// settingsService implements SettingsService.
type settingsService struct {
	settingsRepo repositories.SettingsRepository
	logger       *slog.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settingsRepo repositories.SettingsRepository, logger *slog.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// GetSettings returns the active settings row.
func (s *settingsService) GetSettings(ctx context.Context) (*models.RaffleSettings, error) {
	return s.settingsRepo.GetActive(ctx)
}

// UpdateSettings validates and installs new settings. The active raffle, if
// any, keeps its snapshot; the new settings apply from the next raffle on.
func (s *settingsService) UpdateSettings(ctx context.Context, settings *models.RaffleSettings) (*models.RaffleSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.settingsRepo.Update(ctx, settings)
	if err != nil {
		return nil, err
	}

	s.logger.Info("settings updated",
		"participantsLimit", updated.ParticipantsLimit,
		"betAmount", updated.BetAmount,
		"winnerPercent", updated.WinnerPercent)
	return updated, nil
}
