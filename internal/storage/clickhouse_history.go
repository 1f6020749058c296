package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/adlumen/insight-api/internal/insights"
)

const dayLayout = "2006-01-02"

// ClickHouseHistoryStore implements HistoryStore on ClickHouse. Daily
// rows are append-only; reads aggregate with argMax on ingestion time
// so re-synced days resolve to the freshest values.
type ClickHouseHistoryStore struct {
	conn driver.Conn
}

func NewClickHouseHistoryStore(conn driver.Conn) *ClickHouseHistoryStore {
	return &ClickHouseHistoryStore{conn: conn}
}

func (s *ClickHouseHistoryStore) AppendDaily(ctx context.Context, campaignID string, stats []insights.DailyStat) error {
	if len(stats) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO insight_daily (campaign_id, day, impressions, clicks, spend, conversions, revenue, ingested_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history batch: %w", err)
	}

	now := time.Now().UTC()
	for _, st := range stats {
		day, err := time.Parse(dayLayout, st.Date)
		if err != nil {
			return fmt.Errorf("bad daily stat date %q: %w", st.Date, err)
		}
		if err := batch.Append(campaignID, day, st.Impressions, st.Clicks, st.Spend, st.Conversions, st.Revenue, now); err != nil {
			return fmt.Errorf("failed to append history row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send history batch: %w", err)
	}
	return nil
}

func (s *ClickHouseHistoryStore) DailyRange(ctx context.Context, campaignID, since, until string) ([]insights.DailyStat, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT
			day,
			argMax(impressions, ingested_at) AS impressions,
			argMax(clicks, ingested_at) AS clicks,
			argMax(spend, ingested_at) AS spend,
			argMax(conversions, ingested_at) AS conversions,
			argMax(revenue, ingested_at) AS revenue
		FROM insight_daily
		WHERE campaign_id = ? AND day >= ? AND day < ?
		GROUP BY day
		ORDER BY day
	`, campaignID, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var stats []insights.DailyStat
	for rows.Next() {
		var (
			day time.Time
			st  insights.DailyStat
		)
		if err := rows.Scan(&day, &st.Impressions, &st.Clicks, &st.Spend, &st.Conversions, &st.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		st.Date = day.Format(dayLayout)
		st.CTR = insights.SafePercentage(st.Clicks, st.Impressions, 0)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
