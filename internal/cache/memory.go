package cache

import (
	"context"
	"sync"
	"time"

	"github.com/adlumen/insight-api/internal/models"
)

type memoryEntry struct {
	snap      models.Snapshot
	expiresAt time.Time
}

// MemoryCache implements SnapshotCache in process memory. It is the
// fallback when Redis is unavailable.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-memory snapshot cache.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached snapshot for a campaign and period, if present
// and not expired.
func (c *MemoryCache) Get(_ context.Context, campaignID string, period models.Period) (*models.Snapshot, bool, error) {
	key := snapshotKey(campaignID, period)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	snap := entry.snap
	return &snap, true, nil
}

// Set stores a snapshot with the configured TTL.
func (c *MemoryCache) Set(_ context.Context, snap *models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snapshotKey(snap.CampaignID, snap.Period)] = memoryEntry{
		snap:      *snap,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops every cached snapshot for a campaign.
func (c *MemoryCache) Invalidate(_ context.Context, campaignID string) error {
	prefix := snapshotKey(campaignID, models.Period{})
	// snapshotKey with a zero period ends in ":..", strip to the campaign part.
	prefix = prefix[:len(prefix)-2]

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
	return nil
}
