// Package cache provides short-lived snapshot caching in front of the
// vendor APIs and the snapshot store.
package cache

import (
	"context"

	"github.com/adlumen/insight-api/internal/models"
)

// SnapshotCache stores recent snapshots keyed by campaign and period.
// A miss is not an error; Get reports it through the bool.
type SnapshotCache interface {
	Get(ctx context.Context, campaignID string, period models.Period) (*models.Snapshot, bool, error)
	Set(ctx context.Context, snap *models.Snapshot) error
	Invalidate(ctx context.Context, campaignID string) error
}
