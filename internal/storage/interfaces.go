// Package storage persists campaigns, insight snapshots, sync runs and
// the long-retention daily history. Postgres backs the primary stores,
// ClickHouse the history; in-memory implementations cover tests and
// degraded startup.
package storage

import (
	"context"

	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/models"
)

// CampaignRepo defines CRUD operations for campaigns. Lookups return
// nil without an error when the campaign does not exist.
type CampaignRepo interface {
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]*models.Campaign, error)
	UpsertCampaign(ctx context.Context, c *models.Campaign) error
	DeleteCampaign(ctx context.Context, id string) error
}

// SnapshotStore persists normalized insight snapshots. GetSnapshot
// returns the most recent snapshot for the campaign and period, or nil
// when none has been recorded.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snap *models.Snapshot) error
	GetSnapshot(ctx context.Context, campaignID string, period models.Period) (*models.Snapshot, error)
}

// HistoryStore keeps per-day campaign stats for long-range reporting.
type HistoryStore interface {
	AppendDaily(ctx context.Context, campaignID string, stats []insights.DailyStat) error
	DailyRange(ctx context.Context, campaignID, since, until string) ([]insights.DailyStat, error)
}

// SyncRunStore records sync run outcomes.
type SyncRunStore interface {
	RecordSyncRun(ctx context.Context, run *models.SyncRun) error
	LatestSyncRun(ctx context.Context) (*models.SyncRun, error)
}
