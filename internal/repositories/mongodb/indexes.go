package mongodb

import (
	"context"
	"fmt"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The first two
// are correctness-critical, not optimizations: the partial unique index on
// raffle status turns the "single active raffle" convention into a database
// guarantee, and the compound unique index on participations enforces one
// bet per user per raffle.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	raffleIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.RaffleStatusActive}).
				SetName("one_active_raffle"),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "completedAt", Value: -1}},
		},
	}
	if _, err := db.Collection("raffles").Indexes().CreateMany(ctx, raffleIndexes); err != nil {
		return fmt.Errorf("failed to create raffle indexes: %w", err)
	}

	participationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "raffleId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("one_bet_per_user_per_raffle"),
		},
		{
			Keys: bson.D{{Key: "raffleId", Value: 1}, {Key: "placedAt", Value: 1}},
		},
	}
	if _, err := db.Collection("participations").Indexes().CreateMany(ctx, participationIndexes); err != nil {
		return fmt.Errorf("failed to create participation indexes: %w", err)
	}

	ledgerIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "raffleId", Value: 1}}},
	}
	if _, err := db.Collection("star_transactions").Indexes().CreateMany(ctx, ledgerIndexes); err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "telegramId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, userIndex); err != nil {
		return fmt.Errorf("failed to create user index: %w", err)
	}

	settingsIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	if _, err := db.Collection("raffle_settings").Indexes().CreateOne(ctx, settingsIndex); err != nil {
		return fmt.Errorf("failed to create settings index: %w", err)
	}

	adminIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("admin_users").Indexes().CreateOne(ctx, adminIndex); err != nil {
		return fmt.Errorf("failed to create admin user index: %w", err)
	}

	return nil
}
