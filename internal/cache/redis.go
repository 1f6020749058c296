package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adlumen/insight-api/internal/models"
)

// RedisCache implements SnapshotCache on a shared Redis instance.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed snapshot cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func snapshotKey(campaignID string, period models.Period) string {
	return fmt.Sprintf("insight:snapshot:%s:%s", campaignID, period.String())
}

// Get returns the cached snapshot for a campaign and period, if present.
func (c *RedisCache) Get(ctx context.Context, campaignID string, period models.Period) (*models.Snapshot, bool, error) {
	data, err := c.client.Get(ctx, snapshotKey(campaignID, period)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Treat a corrupt entry as a miss and let the caller overwrite it.
		return nil, false, nil
	}
	return &snap, true, nil
}

// Set stores a snapshot with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(snap.CampaignID, snap.Period), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops every cached snapshot for a campaign.
func (c *RedisCache) Invalidate(ctx context.Context, campaignID string) error {
	pattern := fmt.Sprintf("insight:snapshot:%s:*", campaignID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache invalidate: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	return nil
}
