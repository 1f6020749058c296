package storage

import (
	"context"
	"testing"
	"time"

	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/models"
)

func TestMemoryCampaignRepo(t *testing.T) {
	repo := NewMemoryCampaignRepo()
	ctx := context.Background()

	if c, err := repo.GetCampaign(ctx, "missing"); err != nil || c != nil {
		t.Fatalf("GetCampaign(missing) = %v, %v; want nil, nil", c, err)
	}

	campaign := &models.Campaign{
		ID:     "c1",
		Name:   "Summer Launch",
		Status: models.CampaignStatusActive,
	}
	if err := repo.UpsertCampaign(ctx, campaign); err != nil {
		t.Fatalf("UpsertCampaign: %v", err)
	}

	// Mutating the original must not affect the stored copy.
	campaign.Name = "mutated"

	got, err := repo.GetCampaign(ctx, "c1")
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if got.Name != "Summer Launch" {
		t.Errorf("stored campaign name = %q, want %q", got.Name, "Summer Launch")
	}

	list, err := repo.ListCampaigns(ctx)
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListCampaigns returned %d campaigns, want 1", len(list))
	}

	if err := repo.DeleteCampaign(ctx, "c1"); err != nil {
		t.Fatalf("DeleteCampaign: %v", err)
	}
	if c, _ := repo.GetCampaign(ctx, "c1"); c != nil {
		t.Error("campaign should be gone after delete")
	}
}

func TestMemorySnapshotStore(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()
	period := models.Period{Since: "2026-08-01", Until: "2026-08-08"}

	if snap, err := store.GetSnapshot(ctx, "c1", period); err != nil || snap != nil {
		t.Fatalf("GetSnapshot on empty store = %v, %v; want nil, nil", snap, err)
	}

	snap := &models.Snapshot{
		ID:         "s1",
		CampaignID: "c1",
		Period:     period,
		Metrics:    insights.NormalizedMetrics{Impressions: 1000, Clicks: 50},
		FetchedAt:  time.Now(),
	}
	if err := store.PutSnapshot(ctx, snap); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	got, err := store.GetSnapshot(ctx, "c1", period)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got == nil || got.Metrics.Clicks != 50 {
		t.Fatalf("GetSnapshot = %+v, want clicks 50", got)
	}

	// Same campaign, different period is a separate entry.
	other := models.Period{Since: "2026-07-25", Until: "2026-08-01"}
	if snap, _ := store.GetSnapshot(ctx, "c1", other); snap != nil {
		t.Error("different period should not hit the stored snapshot")
	}
}

func TestMemoryHistoryStore(t *testing.T) {
	store := NewMemoryHistoryStore()
	ctx := context.Background()

	err := store.AppendDaily(ctx, "c1", []insights.DailyStat{
		{Date: "2026-08-01", Impressions: 100, Clicks: 5},
		{Date: "2026-08-02", Impressions: 200, Clicks: 8},
		{Date: "2026-08-03", Impressions: 300, Clicks: 12},
	})
	if err != nil {
		t.Fatalf("AppendDaily: %v", err)
	}

	// Re-appending a day overwrites it.
	if err := store.AppendDaily(ctx, "c1", []insights.DailyStat{
		{Date: "2026-08-02", Impressions: 250, Clicks: 10},
	}); err != nil {
		t.Fatalf("AppendDaily overwrite: %v", err)
	}

	stats, err := store.DailyRange(ctx, "c1", "2026-08-01", "2026-08-03")
	if err != nil {
		t.Fatalf("DailyRange: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("DailyRange returned %d rows, want 2 (until is exclusive)", len(stats))
	}
	if stats[0].Date != "2026-08-01" || stats[1].Date != "2026-08-02" {
		t.Errorf("rows out of order: %q, %q", stats[0].Date, stats[1].Date)
	}
	if stats[1].Impressions != 250 {
		t.Errorf("overwritten day impressions = %v, want 250", stats[1].Impressions)
	}
}

func TestMemorySyncRunStore(t *testing.T) {
	store := NewMemorySyncRunStore()
	ctx := context.Background()

	if run, err := store.LatestSyncRun(ctx); err != nil || run != nil {
		t.Fatalf("LatestSyncRun on empty store = %v, %v; want nil, nil", run, err)
	}

	t0 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	older := &models.SyncRun{ID: "r1", Status: models.SyncStatusCompleted, StartedAt: t0}
	newer := &models.SyncRun{ID: "r2", Status: models.SyncStatusRunning, StartedAt: t0.Add(time.Hour)}
	for _, run := range []*models.SyncRun{older, newer} {
		if err := store.RecordSyncRun(ctx, run); err != nil {
			t.Fatalf("RecordSyncRun: %v", err)
		}
	}

	// Updating a run by ID replaces it in place.
	newer.Status = models.SyncStatusCompleted
	newer.CampaignsOK = 7
	if err := store.RecordSyncRun(ctx, newer); err != nil {
		t.Fatalf("RecordSyncRun update: %v", err)
	}

	latest, err := store.LatestSyncRun(ctx)
	if err != nil {
		t.Fatalf("LatestSyncRun: %v", err)
	}
	if latest.ID != "r2" || latest.Status != models.SyncStatusCompleted || latest.CampaignsOK != 7 {
		t.Errorf("LatestSyncRun = %+v, want updated r2", latest)
	}
}
