package mongodb

import (
	"context"
	"fmt"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LedgerRepository implements the read side of the star transaction ledger.
// The collection is append-only; all writes happen inside the raffle
// repository's transactions.
type LedgerRepository struct {
	collection *mongo.Collection
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *mongo.Database) repositories.LedgerRepository {
	return &LedgerRepository{
		collection: db.Collection("star_transactions"),
	}
}

// FindByUserID returns a user's ledger entries, newest first.
func (r *LedgerRepository) FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.LedgerEntry, error) {
	filter := bson.M{"userId": userID}
	return r.find(ctx, filter, limit, offset)
}

// FindByRaffleID returns every ledger entry written for a raffle, oldest
// first, for audit replay.
func (r *LedgerRepository) FindByRaffleID(ctx context.Context, raffleID primitive.ObjectID) ([]*models.LedgerEntry, error) {
	filter := bson.M{"raffleId": raffleID}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find raffle transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode raffle transactions: %w", err)
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	return entries, nil
}

// SumByRaffleID returns the signed sum of all entries for a raffle. Zero for
// every completed raffle: stakes in equal winner payout plus organizer fee.
func (r *LedgerRepository) SumByRaffleID(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"raffleId": raffleID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum raffle transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode transaction sum: %w", err)
		}
	}
	return result.Total, nil
}

// FindAll returns ledger entries across all users, newest first.
func (r *LedgerRepository) FindAll(ctx context.Context, limit, offset int) ([]*models.LedgerEntry, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *LedgerRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]*models.LedgerEntry, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	return entries, nil
}
