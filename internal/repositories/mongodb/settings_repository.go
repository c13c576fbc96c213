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
)

// SettingsRepository implements repositories.SettingsRepository. Settings
// rows are immutable: an update deactivates the old rows and inserts a new
// active one, preserving the snapshot history.
type SettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *mongo.Database) repositories.SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection("raffle_settings"),
	}
}

// GetActive returns the most recent active settings row.
func (r *SettingsRepository) GetActive(ctx context.Context) (*models.RaffleSettings, error) {
	var settings models.RaffleSettings
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})
	err := r.collection.FindOne(ctx, bson.M{"isActive": true}, opts).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNoActiveSettings
		}
		return nil, fmt.Errorf("failed to find active settings: %w", err)
	}
	return &settings, nil
}

// Update deactivates the current settings and inserts a new active row.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.RaffleSettings) (*models.RaffleSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.collection.UpdateMany(ctx,
		bson.M{"isActive": true},
		bson.M{"$set": bson.M{"isActive": false}},
	); err != nil {
		return nil, fmt.Errorf("failed to deactivate settings: %w", err)
	}

	settings.ID = primitive.NewObjectID()
	settings.IsActive = true
	settings.CreatedAt = time.Now()
	if _, err := r.collection.InsertOne(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to insert settings: %w", err)
	}
	return settings, nil
}
