package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/redis/go-redis/v9"
)

const currentRaffleKey = "raffle:current"

// RaffleCache is a short-TTL read-through cache of the active raffle. It is
// advisory only: every mutating path re-reads the authoritative row inside
// its own transaction, and the cache must never be consulted to decide
// whether to admit, complete or cancel.
type RaffleCache interface {
	Get(ctx context.Context) (*models.Raffle, bool, error)
	Set(ctx context.Context, raffle *models.Raffle) error
	Invalidate(ctx context.Context) error
}

// RedisRaffleCache implements RaffleCache on Redis.
type RedisRaffleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRaffleCache creates a new RedisRaffleCache with the given TTL.
func NewRedisRaffleCache(client *redis.Client, ttl time.Duration) *RedisRaffleCache {
	return &RedisRaffleCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached active raffle. The second return value reports a
// cache hit.
func (c *RedisRaffleCache) Get(ctx context.Context) (*models.Raffle, bool, error) {
	data, err := c.client.Get(ctx, currentRaffleKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read raffle cache: %w", err)
	}

	var raffle models.Raffle
	if err := json.Unmarshal([]byte(data), &raffle); err != nil {
		return nil, false, fmt.Errorf("failed to decode raffle cache: %w", err)
	}
	return &raffle, true, nil
}

// Set stores the active raffle with the configured TTL.
func (c *RedisRaffleCache) Set(ctx context.Context, raffle *models.Raffle) error {
	data, err := json.Marshal(raffle)
	if err != nil {
		return fmt.Errorf("failed to encode raffle for cache: %w", err)
	}
	if err := c.client.Set(ctx, currentRaffleKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write raffle cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached raffle. Called after every mutation.
func (c *RedisRaffleCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, currentRaffleKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate raffle cache: %w", err)
	}
	return nil
}
