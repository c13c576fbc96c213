package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// RaffleRepository implements repositories.RaffleRepository on MongoDB.
//
// Every mutating operation runs inside a single session transaction with
// majority read/write concern. Document-level write locks plus automatic
// retry of transient write conflicts serialize all writers of a raffle
// document, so the capacity check and the terminal-state guard always execute
// against the row they are about to mutate.
type RaffleRepository struct {
	client         *mongo.Client
	raffles        *mongo.Collection
	participations *mongo.Collection
	ledger         *mongo.Collection
}

// NewRaffleRepository creates a new RaffleRepository.
func NewRaffleRepository(client *mongo.Client, db *mongo.Database) repositories.RaffleRepository {
	return &RaffleRepository{
		client:         client,
		raffles:        db.Collection("raffles"),
		participations: db.Collection("participations"),
		ledger:         db.Collection("star_transactions"),
	}
}

// inTransaction runs fn inside a majority-concern session transaction.
func (r *RaffleRepository) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())

	return session.WithTransaction(ctx, fn, txnOpts)
}

// GetActiveRaffle returns the single active raffle, or nil when none exists.
func (r *RaffleRepository) GetActiveRaffle(ctx context.Context) (*models.Raffle, error) {
	var raffle models.Raffle
	filter := bson.M{"status": models.RaffleStatusActive}
	err := r.raffles.FindOne(ctx, filter).Decode(&raffle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active raffle: %w", err)
	}
	return &raffle, nil
}

// CreateRaffle inserts a new active raffle from a settings snapshot. The
// partial unique index on status guarantees at most one active raffle, so a
// concurrent creation loses with models.ErrActiveRaffleExists.
func (r *RaffleRepository) CreateRaffle(ctx context.Context, settings *models.RaffleSettings) (*models.Raffle, error) {
	raffle := &models.Raffle{
		ID:                   primitive.NewObjectID(),
		RequiredParticipants: settings.ParticipantsLimit,
		BetAmount:            settings.BetAmount,
		WinnerPercent:        settings.WinnerPercent,
		OrganizerPercent:     settings.OrganizerPercent,
		Status:               models.RaffleStatusActive,
		CreatedAt:            time.Now(),
	}

	if _, err := r.raffles.InsertOne(ctx, raffle); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrActiveRaffleExists
		}
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}
	return raffle, nil
}

// FindByID returns the raffle with the given ID.
func (r *RaffleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	var raffle models.Raffle
	err := r.raffles.FindOne(ctx, bson.M{"_id": id}).Decode(&raffle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to find raffle: %w", err)
	}
	return &raffle, nil
}

// TryAdmit atomically admits a user into the raffle. The participation
// insert, the guarded counter increment and the bet ledger entry are one
// transaction: either all three commit or none do.
func (r *RaffleRepository) TryAdmit(ctx context.Context, raffleID primitive.ObjectID, userID int64, amount int64) (*repositories.AdmitResult, error) {
	result, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		participation := &models.Participation{
			ID:       primitive.NewObjectID(),
			RaffleID: raffleID,
			UserID:   userID,
			Amount:   amount,
			Status:   models.ParticipationStatusConfirmed,
			PlacedAt: time.Now(),
		}

		// The unique (raffleId, userId) index is the authoritative
		// one-bet-per-user check.
		if _, err := r.participations.InsertOne(sc, participation); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, models.ErrAlreadyParticipated
			}
			return nil, fmt.Errorf("failed to insert participation: %w", err)
		}

		// Increment counters only while the raffle is active and below
		// capacity. The filter and the increment are one document update,
		// so over-admission is impossible.
		filter := bson.M{
			"_id":    raffleID,
			"status": models.RaffleStatusActive,
			"$expr":  bson.M{"$lt": bson.A{"$currentParticipants", "$requiredParticipants"}},
		}
		update := bson.M{"$inc": bson.M{"currentParticipants": 1, "totalPot": amount}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var raffle models.Raffle
		err := r.raffles.FindOneAndUpdate(sc, filter, update, opts).Decode(&raffle)
		if err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("failed to update raffle counters: %w", err)
			}
			// Distinguish full from terminal. Returning an error aborts
			// the transaction, rolling back the participation insert.
			var current models.Raffle
			if err := r.raffles.FindOne(sc, bson.M{"_id": raffleID}).Decode(&current); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil, models.ErrRaffleNotFound
				}
				return nil, fmt.Errorf("failed to re-read raffle: %w", err)
			}
			if current.Status != models.RaffleStatusActive {
				return nil, models.ErrRaffleNotActive
			}
			return nil, models.ErrRaffleFull
		}

		entry := &models.LedgerEntry{
			ID:              primitive.NewObjectID(),
			UserID:          &userID,
			Amount:          -amount,
			Type:            models.LedgerEntryBet,
			RaffleID:        &raffleID,
			ParticipationID: &participation.ID,
			CreatedAt:       time.Now(),
		}
		if _, err := r.ledger.InsertOne(sc, entry); err != nil {
			return nil, fmt.Errorf("failed to record bet transaction: %w", err)
		}

		return &repositories.AdmitResult{
			Raffle:        &raffle,
			Participation: participation,
			NowFull:       raffle.CurrentParticipants == raffle.RequiredParticipants,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*repositories.AdmitResult), nil
}

// TryComplete atomically transitions the raffle to completed and writes the
// win and fee ledger entries. The active-only filter on the status update is
// the exactly-once guard: a concurrent completion or cancellation makes this
// call fail with models.ErrRaffleTerminal and write nothing.
func (r *RaffleRepository) TryComplete(ctx context.Context, raffleID primitive.ObjectID, winnerID int64, winnerAmount, organizerAmount int64, randomSeed string) (*models.Raffle, error) {
	result, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		filter := bson.M{"_id": raffleID, "status": models.RaffleStatusActive}
		update := bson.M{"$set": bson.M{
			"status":          models.RaffleStatusCompleted,
			"winnerId":        winnerID,
			"winnerAmount":    winnerAmount,
			"organizerAmount": organizerAmount,
			"randomSeed":      randomSeed,
			"completedAt":     now,
		}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var raffle models.Raffle
		if err := r.raffles.FindOneAndUpdate(sc, filter, update, opts).Decode(&raffle); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, models.ErrRaffleTerminal
			}
			return nil, fmt.Errorf("failed to complete raffle: %w", err)
		}

		entries := []interface{}{
			&models.LedgerEntry{
				ID:        primitive.NewObjectID(),
				UserID:    &winnerID,
				Amount:    winnerAmount,
				Type:      models.LedgerEntryWin,
				RaffleID:  &raffleID,
				CreatedAt: now,
			},
			&models.LedgerEntry{
				ID:        primitive.NewObjectID(),
				UserID:    nil, // operator
				Amount:    organizerAmount,
				Type:      models.LedgerEntryFee,
				RaffleID:  &raffleID,
				CreatedAt: now,
			},
		}
		if _, err := r.ledger.InsertMany(sc, entries); err != nil {
			return nil, fmt.Errorf("failed to record payout transactions: %w", err)
		}

		return &raffle, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Raffle), nil
}

// Cancel atomically transitions the raffle to cancelled and refunds every
// participation through the ledger. Idempotent: a second call fails cleanly
// with models.ErrRaffleTerminal and has no side effects.
func (r *RaffleRepository) Cancel(ctx context.Context, raffleID primitive.ObjectID, reason string) ([]*models.Participation, error) {
	result, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		filter := bson.M{"_id": raffleID, "status": models.RaffleStatusActive}
		update := bson.M{"$set": bson.M{
			"status":       models.RaffleStatusCancelled,
			"cancelReason": reason,
			"completedAt":  now,
		}}
		res := r.raffles.FindOneAndUpdate(sc, filter, update)
		if err := res.Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, models.ErrRaffleTerminal
			}
			return nil, fmt.Errorf("failed to cancel raffle: %w", err)
		}

		participants, err := r.findParticipants(sc, raffleID)
		if err != nil {
			return nil, err
		}

		if len(participants) > 0 {
			entries := make([]interface{}, 0, len(participants))
			for _, p := range participants {
				userID := p.UserID
				participationID := p.ID
				entries = append(entries, &models.LedgerEntry{
					ID:              primitive.NewObjectID(),
					UserID:          &userID,
					Amount:          p.Amount,
					Type:            models.LedgerEntryRefund,
					RaffleID:        &raffleID,
					ParticipationID: &participationID,
					CreatedAt:       now,
				})
			}
			if _, err := r.ledger.InsertMany(sc, entries); err != nil {
				return nil, fmt.Errorf("failed to record refund transactions: %w", err)
			}
		}

		return participants, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Participation), nil
}

// GetParticipants returns the raffle's confirmed participations ordered by
// placement time, ties broken by insertion ID.
func (r *RaffleRepository) GetParticipants(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Participation, error) {
	return r.findParticipants(ctx, raffleID)
}

func (r *RaffleRepository) findParticipants(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Participation, error) {
	filter := bson.M{"raffleId": raffleID, "status": models.ParticipationStatusConfirmed}
	opts := options.Find().SetSort(bson.D{{Key: "placedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.participations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find participants: %w", err)
	}
	defer cursor.Close(ctx)

	var participants []*models.Participation
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}
	if participants == nil {
		participants = []*models.Participation{}
	}
	return participants, nil
}

// HasParticipation reports whether the user already holds a participation in
// the raffle.
func (r *RaffleRepository) HasParticipation(ctx context.Context, raffleID primitive.ObjectID, userID int64) (bool, error) {
	filter := bson.M{"raffleId": raffleID, "userId": userID}
	count, err := r.participations.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to count participations: %w", err)
	}
	return count > 0, nil
}

// GetHistory returns terminal raffles ordered by completion time descending.
func (r *RaffleRepository) GetHistory(ctx context.Context, limit, offset int) ([]*models.Raffle, error) {
	filter := bson.M{"status": bson.M{"$in": []models.RaffleStatus{
		models.RaffleStatusCompleted,
		models.RaffleStatusCancelled,
	}}}
	opts := options.Find().
		SetSort(bson.M{"completedAt": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.raffles.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find raffle history: %w", err)
	}
	defer cursor.Close(ctx)

	var raffles []*models.Raffle
	if err := cursor.All(ctx, &raffles); err != nil {
		return nil, fmt.Errorf("failed to decode raffle history: %w", err)
	}
	if raffles == nil {
		raffles = []*models.Raffle{}
	}
	return raffles, nil
}

// GetStats returns aggregate raffle statistics.
func (r *RaffleRepository) GetStats(ctx context.Context) (*models.RaffleStats, error) {
	countIf := func(status models.RaffleStatus) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
	}
	isCompleted := bson.M{"$eq": bson.A{"$status", models.RaffleStatusCompleted}}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":              nil,
			"totalRaffles":     bson.M{"$sum": 1},
			"completedRaffles": countIf(models.RaffleStatusCompleted),
			"cancelledRaffles": countIf(models.RaffleStatusCancelled),
			"activeRaffles":    countIf(models.RaffleStatusActive),
			// Only completed pots count as volume: cancelled stakes are
			// fully refunded and active pots are still in flight.
			"totalVolume":     bson.M{"$sum": bson.M{"$cond": bson.A{isCompleted, "$totalPot", 0}}},
			"totalFees":       bson.M{"$sum": bson.M{"$ifNull": bson.A{"$organizerAmount", 0}}},
			"avgParticipants": bson.M{"$avg": "$currentParticipants"},
		}}},
	}

	cursor, err := r.raffles.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate raffle stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &models.RaffleStats{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(stats); err != nil {
			return nil, fmt.Errorf("failed to decode raffle stats: %w", err)
		}
	}

	uniqueUsers, err := r.participations.Distinct(ctx, "userId", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count unique participants: %w", err)
	}
	stats.UniqueParticipants = int64(len(uniqueUsers))

	return stats, nil
}
