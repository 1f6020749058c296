package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/models"
)

// PostgresSnapshotStore implements SnapshotStore using PostgreSQL.
// Normalized metrics are stored as a JSONB document; the period columns
// carry the query dimensions.
type PostgresSnapshotStore struct {
	pool *pgxpool.Pool
}

func NewPostgresSnapshotStore(pool *pgxpool.Pool) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{pool: pool}
}

func (s *PostgresSnapshotStore) PutSnapshot(ctx context.Context, snap *models.Snapshot) error {
	metrics, err := json.Marshal(snap.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	warnings, err := json.Marshal(snap.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshots (id, campaign_id, period_since, period_until, metrics, warnings, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (campaign_id, period_since, period_until) DO UPDATE SET
			id = EXCLUDED.id,
			metrics = EXCLUDED.metrics,
			warnings = EXCLUDED.warnings,
			fetched_at = EXCLUDED.fetched_at
	`, snap.ID, snap.CampaignID, snap.Period.Since, snap.Period.Until, metrics, warnings, snap.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (s *PostgresSnapshotStore) GetSnapshot(ctx context.Context, campaignID string, period models.Period) (*models.Snapshot, error) {
	var (
		snap     models.Snapshot
		metrics  []byte
		warnings []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, campaign_id, period_since, period_until, metrics, warnings, fetched_at
		FROM snapshots
		WHERE campaign_id = $1 AND period_since = $2 AND period_until = $3
		ORDER BY fetched_at DESC
		LIMIT 1
	`, campaignID, period.Since, period.Until).Scan(
		&snap.ID, &snap.CampaignID, &snap.Period.Since, &snap.Period.Until,
		&metrics, &warnings, &snap.FetchedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap.Metrics = insights.NormalizedMetrics{}
	if err := json.Unmarshal(metrics, &snap.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &snap.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	return &snap, nil
}

// PostgresSyncRunStore implements SyncRunStore using PostgreSQL.
type PostgresSyncRunStore struct {
	pool *pgxpool.Pool
}

func NewPostgresSyncRunStore(pool *pgxpool.Pool) *PostgresSyncRunStore {
	return &PostgresSyncRunStore{pool: pool}
}

func (s *PostgresSyncRunStore) RecordSyncRun(ctx context.Context, run *models.SyncRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_runs (id, status, campaigns_total, campaigns_ok, campaigns_err, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			campaigns_total = EXCLUDED.campaigns_total,
			campaigns_ok = EXCLUDED.campaigns_ok,
			campaigns_err = EXCLUDED.campaigns_err,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at
	`, run.ID, run.Status, run.CampaignsTotal, run.CampaignsOK, run.CampaignsErr,
		run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

func (s *PostgresSyncRunStore) LatestSyncRun(ctx context.Context) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.pool.QueryRow(ctx, `
		SELECT id, status, campaigns_total, campaigns_ok, campaigns_err, error, started_at, finished_at
		FROM sync_runs ORDER BY started_at DESC LIMIT 1
	`).Scan(&run.ID, &run.Status, &run.CampaignsTotal, &run.CampaignsOK, &run.CampaignsErr,
		&run.Error, &run.StartedAt, &run.FinishedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}
	return &run, nil
}
