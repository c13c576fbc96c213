package services

import (
	"context"
	"errors"

	"github.com/VictorFortuna/telegram-raffle-game/internal/cache"
	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// raffleService implements RaffleService.
type raffleService struct {
	raffleRepo   repositories.RaffleRepository
	settingsRepo repositories.SettingsRepository
	cache        cache.RaffleCache
	notifier     NotificationService
	logger       *slog.Logger
}

// NewRaffleService creates a new RaffleService. The notifier may be nil, in
// which case lifecycle events are not published.
func NewRaffleService(
	raffleRepo repositories.RaffleRepository,
	settingsRepo repositories.SettingsRepository,
	raffleCache cache.RaffleCache,
	notifier NotificationService,
	logger *slog.Logger,
) RaffleService {
	return &raffleService{
		raffleRepo:   raffleRepo,
		settingsRepo: settingsRepo,
		cache:        raffleCache,
		notifier:     notifier,
		logger:       logger,
	}
}

// PlaceBet admits a user into the current raffle, creating the raffle lazily
// from the active settings when none is open. When the bet fills the last
// slot, the same call draws the winner and completes the raffle.
func (s *raffleService) PlaceBet(ctx context.Context, userID int64) (*BetResult, error) {
	raffle, err := s.currentOrNewRaffle(ctx)
	if err != nil {
		return nil, err
	}

	admit, err := s.raffleRepo.TryAdmit(ctx, raffle.ID, userID, raffle.BetAmount)
	if err != nil {
		if errors.Is(err, models.ErrRaffleFull) || errors.Is(err, models.ErrRaffleNotActive) {
			// The cached raffle went stale between the read and the write.
			s.invalidateCache(ctx)
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("bet placed",
		"raffleId", admit.Raffle.ID.Hex(),
		"userId", userID,
		"participants", admit.Raffle.CurrentParticipants,
		"required", admit.Raffle.RequiredParticipants)

	if !admit.NowFull {
		return &BetResult{
			Raffle:        admit.Raffle,
			Participation: admit.Participation,
		}, nil
	}

	completed, winner, participants, err := s.complete(ctx, admit.Raffle)
	if err != nil {
		return nil, err
	}

	// A lost completion race may re-read a raffle another path cancelled, so
	// the flag comes from the committed status, not from this call's intent.
	return &BetResult{
		Raffle:        completed,
		Participation: admit.Participation,
		Completed:     completed.Status == models.RaffleStatusCompleted,
		Winner:        winner,
		Participants:  participants,
	}, nil
}

// currentOrNewRaffle returns the active raffle, creating one from the active
// settings when none exists. A concurrent creation race is resolved by
// re-reading the winner's row.
func (s *raffleService) currentOrNewRaffle(ctx context.Context) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.GetActiveRaffle(ctx)
	if err != nil {
		return nil, err
	}
	if raffle != nil {
		return raffle, nil
	}

	settings, err := s.settingsRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	raffle, err = s.raffleRepo.CreateRaffle(ctx, settings)
	if err != nil {
		if errors.Is(err, models.ErrActiveRaffleExists) {
			raffle, err = s.raffleRepo.GetActiveRaffle(ctx)
			if err != nil {
				return nil, err
			}
			if raffle == nil {
				// The concurrent raffle already filled and completed.
				return nil, models.ErrRaffleNotActive
			}
			return raffle, nil
		}
		return nil, err
	}

	s.logger.Info("raffle created",
		"raffleId", raffle.ID.Hex(),
		"required", raffle.RequiredParticipants,
		"betAmount", raffle.BetAmount)
	return raffle, nil
}

// complete draws the winner for a full raffle and transitions it to
// completed. Exactly one caller can succeed; a loser of that race re-reads
// the terminal row and returns it as if it had won, so the caller that filled
// the raffle always sees a completed result.
func (s *raffleService) complete(ctx context.Context, raffle *models.Raffle) (*models.Raffle, *models.Participation, []*models.Participation, error) {
	// The participant set is immutable once the raffle is full, so reading it
	// outside the completion transaction is safe.
	participants, err := s.raffleRepo.GetParticipants(ctx, raffle.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	seed, err := NewRandomSeed()
	if err != nil {
		return nil, nil, nil, err
	}

	winnerIndex, err := SelectWinner(participants, seed, raffle.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	winner := participants[winnerIndex]
	winnerAmount, organizerAmount := raffle.SplitPot()

	completed, err := s.raffleRepo.TryComplete(ctx, raffle.ID, winner.UserID, winnerAmount, organizerAmount, seed)
	if err != nil {
		if errors.Is(err, models.ErrRaffleTerminal) {
			// Lost the completion race; surface the committed outcome.
			completed, err = s.raffleRepo.FindByID(ctx, raffle.ID)
			if err != nil {
				return nil, nil, nil, err
			}
			winner = findParticipant(participants, completed.WinnerID)
			return completed, winner, participants, nil
		}
		return nil, nil, nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("raffle completed",
		"raffleId", completed.ID.Hex(),
		"winnerId", completed.WinnerID,
		"winnerAmount", completed.WinnerAmount,
		"organizerAmount", completed.OrganizerAmount,
		"randomSeed", completed.RandomSeed)

	if s.notifier != nil {
		if err := s.notifier.RaffleCompleted(ctx, completed, winner, participants); err != nil {
			// The raffle is already committed; delivery failures only get logged.
			s.logger.Error("failed to publish completion", "raffleId", completed.ID.Hex(), "error", err)
		}
	}

	return completed, winner, participants, nil
}

// CancelRaffle transitions an active raffle to cancelled and refunds every
// participant.
func (s *raffleService) CancelRaffle(ctx context.Context, raffleID primitive.ObjectID, reason string) (*CancelResult, error) {
	participants, err := s.raffleRepo.Cancel(ctx, raffleID, reason)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)

	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("raffle cancelled",
		"raffleId", raffle.ID.Hex(),
		"reason", reason,
		"refunded", len(participants))

	if s.notifier != nil {
		if err := s.notifier.RaffleCancelled(ctx, raffle, participants, reason); err != nil {
			s.logger.Error("failed to publish cancellation", "raffleId", raffle.ID.Hex(), "error", err)
		}
	}

	return &CancelResult{
		Raffle:       raffle,
		Participants: participants,
		Refunded:     len(participants),
	}, nil
}

// GetCurrentRaffle returns the active raffle through the short-TTL cache, or
// nil when no raffle is open. The cache only serves this read path; mutating
// paths always hit the repository.
func (s *raffleService) GetCurrentRaffle(ctx context.Context) (*models.Raffle, error) {
	if s.cache != nil {
		raffle, hit, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("raffle cache read failed", "error", err)
		} else if hit {
			return raffle, nil
		}
	}

	raffle, err := s.raffleRepo.GetActiveRaffle(ctx)
	if err != nil {
		return nil, err
	}

	if raffle != nil && s.cache != nil {
		if err := s.cache.Set(ctx, raffle); err != nil {
			s.logger.Warn("raffle cache write failed", "error", err)
		}
	}
	return raffle, nil
}

// GetRaffle returns a raffle by ID.
func (s *raffleService) GetRaffle(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	return s.raffleRepo.FindByID(ctx, id)
}

// GetParticipants returns a raffle's participations in placement order.
func (s *raffleService) GetParticipants(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Participation, error) {
	return s.raffleRepo.GetParticipants(ctx, raffleID)
}

// GetHistory returns terminal raffles, most recently finished first.
func (s *raffleService) GetHistory(ctx context.Context, limit, offset int) ([]*models.Raffle, error) {
	return s.raffleRepo.GetHistory(ctx, limit, offset)
}

// GetStatistics returns aggregate raffle statistics.
func (s *raffleService) GetStatistics(ctx context.Context) (*models.RaffleStats, error) {
	return s.raffleRepo.GetStats(ctx)
}

// CanParticipate reports whether the user may join the current raffle. Purely
// advisory for the UI; PlaceBet re-checks everything atomically.
func (s *raffleService) CanParticipate(ctx context.Context, userID int64) (*ParticipationCheck, error) {
	raffle, err := s.GetCurrentRaffle(ctx)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		// No open raffle: the next bet opens one.
		return &ParticipationCheck{CanParticipate: true}, nil
	}

	joined, err := s.raffleRepo.HasParticipation(ctx, raffle.ID, userID)
	if err != nil {
		return nil, err
	}
	if joined {
		return &ParticipationCheck{
			CanParticipate: false,
			Reason:         "already participating in this raffle",
			Raffle:         raffle,
		}, nil
	}
	if raffle.IsFull() {
		return &ParticipationCheck{
			CanParticipate: false,
			Reason:         "raffle is full",
			Raffle:         raffle,
		}, nil
	}
	return &ParticipationCheck{CanParticipate: true, Raffle: raffle}, nil
}

func (s *raffleService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("raffle cache invalidation failed", "error", err)
	}
}

func findParticipant(participants []*models.Participation, userID int64) *models.Participation {
	for _, p := range participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
