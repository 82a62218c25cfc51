// Package cache holds the Redis read cache for per-user recommendation lists.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/jobboard-service/internal/model"
)

const keyPrefix = "jobboard:recommendations:"

// Recommendations caches the full, score-ordered result list of a user.
type Recommendations struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRecommendations returns a cache whose entries expire after ttl.
func NewRecommendations(rdb *redis.Client, ttl time.Duration) *Recommendations {
	return &Recommendations{rdb: rdb, ttl: ttl}
}

func key(userID string) string { return keyPrefix + userID }

// Get returns the cached list; ok is false on a miss.
func (c *Recommendations) Get(ctx context.Context, userID string) ([]model.RecommendationResult, bool, error) {
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var results []model.RecommendationResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return results, true, nil
}

// Set stores results for userID.
func (c *Recommendations) Set(ctx context.Context, userID string, results []model.RecommendationResult) error {
	if results == nil {
		results = []model.RecommendationResult{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, key(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the entry of userID.
func (c *Recommendations) Invalidate(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
