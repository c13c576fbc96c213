package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/pkg/telegram"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"golang.org/x/exp/slog"
)

// Event types published to the raffle events topic.
const (
	EventRaffleCompleted = "raffle.completed"
	EventRaffleCancelled = "raffle.cancelled"
)

// RaffleEvent is the envelope written to Kafka for downstream consumers
// (payout workers, analytics). The raffle ID keys the message so events for
// one raffle stay ordered.
type RaffleEvent struct {
	EventID      string         `json:"event_id"`
	Type         string         `json:"type"`
	RaffleID     string         `json:"raffle_id"`
	WinnerID     int64          `json:"winner_id,omitempty"`
	WinnerAmount int64          `json:"winner_amount,omitempty"`
	TotalPot     int64          `json:"total_pot"`
	Reason       string         `json:"reason,omitempty"`
	Participants []int64        `json:"participants"`
	OccurredAt   time.Time      `json:"occurred_at"`
	Raffle       *models.Raffle `json:"raffle"`
}

// notificationService implements NotificationService on Kafka, with optional
// direct Telegram messages to affected players.
type notificationService struct {
	writer   *kafka.Writer
	telegram *telegram.Client
	logger   *slog.Logger
}

// NewNotificationService creates a new NotificationService. Either writer or
// telegramClient may be nil to disable that channel.
func NewNotificationService(writer *kafka.Writer, telegramClient *telegram.Client, logger *slog.Logger) NotificationService {
	return &notificationService{
		writer:   writer,
		telegram: telegramClient,
		logger:   logger,
	}
}

// RaffleCompleted publishes the completion event and congratulates the winner.
func (s *notificationService) RaffleCompleted(ctx context.Context, raffle *models.Raffle, winner *models.Participation, participants []*models.Participation) error {
	event := &RaffleEvent{
		EventID:      uuid.NewString(),
		Type:         EventRaffleCompleted,
		RaffleID:     raffle.ID.Hex(),
		WinnerID:     raffle.WinnerID,
		WinnerAmount: raffle.WinnerAmount,
		TotalPot:     raffle.TotalPot,
		Participants: participantIDs(participants),
		OccurredAt:   time.Now(),
		Raffle:       raffle,
	}
	if err := s.publish(ctx, event); err != nil {
		return err
	}

	if s.telegram != nil && winner != nil {
		text := fmt.Sprintf("🎉 You won %d stars in raffle %s!", raffle.WinnerAmount, raffle.ID.Hex())
		if err := s.telegram.SendMessage(ctx, winner.UserID, text); err != nil {
			s.logger.Warn("failed to notify winner", "userId", winner.UserID, "error", err)
		}
	}
	return nil
}

// RaffleCancelled publishes the cancellation event and tells every refunded
// participant.
func (s *notificationService) RaffleCancelled(ctx context.Context, raffle *models.Raffle, participants []*models.Participation, reason string) error {
	event := &RaffleEvent{
		EventID:      uuid.NewString(),
		Type:         EventRaffleCancelled,
		RaffleID:     raffle.ID.Hex(),
		TotalPot:     raffle.TotalPot,
		Reason:       reason,
		Participants: participantIDs(participants),
		OccurredAt:   time.Now(),
		Raffle:       raffle,
	}
	if err := s.publish(ctx, event); err != nil {
		return err
	}

	if s.telegram != nil {
		for _, p := range participants {
			text := fmt.Sprintf("Raffle %s was cancelled, your %d stars have been refunded.", raffle.ID.Hex(), p.Amount)
			if err := s.telegram.SendMessage(ctx, p.UserID, text); err != nil {
				s.logger.Warn("failed to notify participant", "userId", p.UserID, "error", err)
			}
		}
	}
	return nil
}

func (s *notificationService) publish(ctx context.Context, event *RaffleEvent) error {
	if s.writer == nil {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode raffle event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.RaffleID),
		Value: value,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish raffle event: %w", err)
	}

	s.logger.Info("raffle event published", "type", event.Type, "raffleId", event.RaffleID, "eventId", event.EventID)
	return nil
}

func participantIDs(participants []*models.Participation) []int64 {
	ids := make([]int64, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
