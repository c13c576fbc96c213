package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository implements repositories.UserRepository for Telegram users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *mongo.Database) repositories.UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// Upsert creates or refreshes a user row from verified Telegram init data.
func (r *UserRepository) Upsert(ctx context.Context, tu *models.TelegramUser) (*models.User, error) {
	now := time.Now()
	languageCode := tu.LanguageCode
	if languageCode == "" {
		languageCode = "en"
	}

	filter := bson.M{"telegramId": tu.ID}
	update := bson.M{
		"$set": bson.M{
			"username":     tu.Username,
			"firstName":    tu.FirstName,
			"lastName":     tu.LastName,
			"languageCode": languageCode,
			"isActive":     true,
			"lastActive":   now,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"telegramId": tu.ID,
			"createdAt":  now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

// FindByTelegramID finds a user by Telegram ID, or returns nil when unknown.
func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"telegramId": telegramID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// UpdateLastActive refreshes the user's activity timestamp.
func (r *UserRepository) UpdateLastActive(ctx context.Context, telegramID int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"telegramId": telegramID},
		bson.M{"$set": bson.M{"lastActive": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

// CountActive counts users seen within the last 24 hours.
func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	filter := bson.M{
		"isActive":   true,
		"lastActive": bson.M{"$gt": time.Now().Add(-24 * time.Hour)},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// CountTotal counts all non-deactivated users.
func (r *UserRepository) CountTotal(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"isActive": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// FindAll returns users ordered by most recent activity.
func (r *UserRepository) FindAll(ctx context.Context, limit, offset int) ([]*models.User, error) {
	opts := options.Find().
		SetSort(bson.M{"lastActive": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}
