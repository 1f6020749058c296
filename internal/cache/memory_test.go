package cache

import (
	"context"
	"testing"
	"time"

	"github.com/adlumen/insight-api/internal/models"
)

func testSnapshot(campaignID, since, until string) *models.Snapshot {
	return &models.Snapshot{
		ID:         "snap-" + campaignID,
		CampaignID: campaignID,
		Period:     models.Period{Since: since, Until: until},
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	snap := testSnapshot("c1", "2026-08-01", "2026-08-08")
	if err := c.Set(ctx, snap); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := c.Get(ctx, "c1", snap.Period)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.ID != snap.ID {
		t.Errorf("got snapshot %q, want %q", got.ID, snap.ID)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(time.Minute)

	_, ok, err := c.Get(context.Background(), "absent", models.Period{Since: "2026-08-01", Until: "2026-08-08"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected a miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	snap := testSnapshot("c1", "2026-08-01", "2026-08-08")
	if err := c.Set(ctx, snap); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, ok, _ := c.Get(ctx, "c1", snap.Period); !ok {
		t.Fatal("expected a hit before TTL")
	}

	now = now.Add(31 * time.Second)
	if _, ok, _ := c.Get(ctx, "c1", snap.Period); ok {
		t.Fatal("expected a miss after TTL")
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	a1 := testSnapshot("c1", "2026-08-01", "2026-08-08")
	a2 := testSnapshot("c1", "2026-07-01", "2026-07-08")
	b := testSnapshot("c2", "2026-08-01", "2026-08-08")
	for _, s := range []*models.Snapshot{a1, a2, b} {
		if err := c.Set(ctx, s); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if err := c.Invalidate(ctx, "c1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "c1", a1.Period); ok {
		t.Error("c1 first period should be invalidated")
	}
	if _, ok, _ := c.Get(ctx, "c1", a2.Period); ok {
		t.Error("c1 second period should be invalidated")
	}
	if _, ok, _ := c.Get(ctx, "c2", b.Period); !ok {
		t.Error("c2 should survive invalidation of c1")
	}
}
