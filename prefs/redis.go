package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robertmeta/feedq/model"
)

// RedisCache stores each set as JSON under hidden-prefs:<user id>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache. A zero ttl keeps keys until deleted.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(userID int64) string {
	return fmt.Sprintf("hidden-prefs:%d", userID)
}

func (c *RedisCache) Get(ctx context.Context, userID int64) (model.HiddenPreferenceSet, bool, error) {
	var set model.HiddenPreferenceSet
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return set, false, nil
	}
	if err != nil {
		return set, false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, &set); err != nil {
		return set, false, fmt.Errorf("decode cached preferences: %w", err)
	}
	return set, true, nil
}

func (c *RedisCache) Set(ctx context.Context, userID int64, set model.HiddenPreferenceSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := c.client.Set(ctx, key(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
