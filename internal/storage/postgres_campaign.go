package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adlumen/insight-api/internal/models"
)

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

func (r *PostgresCampaignRepo) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	err := r.pool.QueryRow(ctx, `
		SELECT id, external_id, account_id, name, status, objective,
		       channel, utm_campaign, daily_budget, created_at, updated_at
		FROM campaigns WHERE id = $1
	`, id).Scan(&c.ID, &c.ExternalID, &c.AccountID, &c.Name, &c.Status, &c.Objective,
		&c.Channel, &c.UTMCampaign, &c.DailyBudget, &c.CreatedAt, &c.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

func (r *PostgresCampaignRepo) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, external_id, account_id, name, status, objective,
		       channel, utm_campaign, daily_budget, created_at, updated_at
		FROM campaigns ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.ExternalID, &c.AccountID, &c.Name, &c.Status, &c.Objective,
			&c.Channel, &c.UTMCampaign, &c.DailyBudget, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}

func (r *PostgresCampaignRepo) UpsertCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (id, external_id, account_id, name, status, objective,
		                       channel, utm_campaign, daily_budget, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			account_id = EXCLUDED.account_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			objective = EXCLUDED.objective,
			channel = EXCLUDED.channel,
			utm_campaign = EXCLUDED.utm_campaign,
			daily_budget = EXCLUDED.daily_budget,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.ExternalID, c.AccountID, c.Name, c.Status, c.Objective,
		c.Channel, c.UTMCampaign, c.DailyBudget, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert campaign: %w", err)
	}
	return nil
}

func (r *PostgresCampaignRepo) DeleteCampaign(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}
