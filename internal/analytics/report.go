package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adlumen/insight-api/internal/cache"
	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/metrics"
	"github.com/adlumen/insight-api/internal/models"
	"github.com/adlumen/insight-api/internal/storage"
)

// ErrNoSnapshot is returned when no snapshot exists for a campaign and
// period and on-demand sync is not possible.
var ErrNoSnapshot = errors.New("no snapshot for period")

// InsightReport is the full derived view of one campaign period.
type InsightReport struct {
	CampaignID       string                     `json:"campaign_id"`
	Period           models.Period              `json:"period"`
	Metrics          insights.NormalizedMetrics `json:"metrics"`
	Warnings         []string                   `json:"warnings,omitempty"`
	Reliability      float64                    `json:"reliability"`
	PerformanceScore float64                    `json:"performance_score"`
	FetchedAt        time.Time                  `json:"fetched_at"`
}

// TrendReport compares a period against the adjacent earlier one.
type TrendReport struct {
	CampaignID     string                          `json:"campaign_id"`
	Period         models.Period                   `json:"period"`
	PreviousPeriod models.Period                   `json:"previous_period"`
	Trends         map[string]insights.MetricTrend `json:"trends"`
	Reliability    float64                         `json:"reliability"`
}

// BucketReport carries hour-of-day and day-of-week rankings.
type BucketReport struct {
	CampaignID string                   `json:"campaign_id"`
	Period     models.Period            `json:"period"`
	Hourly     *insights.BucketAnalysis `json:"hourly,omitempty"`
	Daily      *insights.BucketAnalysis `json:"daily,omitempty"`
}

// ReportService serves derived reports from cached or stored snapshots,
// falling back to an on-demand sync on a cold miss.
type ReportService struct {
	snapshots storage.SnapshotStore
	history   storage.HistoryStore
	cache     cache.SnapshotCache
	syncer    *SyncService
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewReportService wires a report service. history may be nil.
func NewReportService(
	snapshots storage.SnapshotStore,
	history storage.HistoryStore,
	snapCache cache.SnapshotCache,
	syncer *SyncService,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ReportService {
	return &ReportService{
		snapshots: snapshots,
		history:   history,
		cache:     snapCache,
		syncer:    syncer,
		logger:    logger,
		metrics:   m,
	}
}

// snapshot resolves a snapshot for the campaign and period: cache, then
// store, then an on-demand sync.
func (s *ReportService) snapshot(ctx context.Context, campaignID string, period models.Period) (*models.Snapshot, error) {
	snap, hit, err := s.cache.Get(ctx, campaignID, period)
	if err != nil {
		s.logger.Warn("snapshot cache lookup failed", zap.Error(err))
	}
	if hit {
		s.metrics.RecordCacheHit("snapshot")
		return snap, nil
	}
	s.metrics.RecordCacheMiss("snapshot")

	snap, err = s.snapshots.GetSnapshot(ctx, campaignID, period)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			s.logger.Warn("failed to cache snapshot", zap.Error(err))
		}
		return snap, nil
	}

	if s.syncer == nil {
		return nil, ErrNoSnapshot
	}
	snap, err = s.syncer.SyncCampaignByID(ctx, campaignID, period)
	if err != nil {
		return nil, fmt.Errorf("on-demand sync failed: %w", err)
	}
	return snap, nil
}

// Insights returns the derived report for a campaign period.
func (s *ReportService) Insights(ctx context.Context, campaignID string, period models.Period) (*InsightReport, error) {
	snap, err := s.snapshot(ctx, campaignID, period)
	if err != nil {
		return nil, err
	}
	return &InsightReport{
		CampaignID:       campaignID,
		Period:           snap.Period,
		Metrics:          snap.Metrics,
		Warnings:         snap.Warnings,
		Reliability:      insights.ReliabilityScore(snap.Metrics),
		PerformanceScore: insights.PerformanceScore(snap.Metrics),
		FetchedAt:        snap.FetchedAt,
	}, nil
}

// Trends compares the period against the adjacent earlier period.
func (s *ReportService) Trends(ctx context.Context, campaignID string, period models.Period) (*TrendReport, error) {
	prev, err := PreviousPeriod(period)
	if err != nil {
		return nil, err
	}

	current, err := s.snapshot(ctx, campaignID, period)
	if err != nil {
		return nil, err
	}
	previous, err := s.snapshot(ctx, campaignID, prev)
	if err != nil {
		return nil, err
	}

	return &TrendReport{
		CampaignID:     campaignID,
		Period:         period,
		PreviousPeriod: prev,
		Trends:         insights.CompareTrends(current.Metrics, previous.Metrics),
		Reliability:    insights.TrendReliabilityScore(current.Metrics, previous.Metrics),
	}, nil
}

// Buckets ranks hour-of-day and day-of-week performance for the period.
func (s *ReportService) Buckets(ctx context.Context, campaignID string, period models.Period) (*BucketReport, error) {
	snap, err := s.snapshot(ctx, campaignID, period)
	if err != nil {
		return nil, err
	}
	return &BucketReport{
		CampaignID: campaignID,
		Period:     snap.Period,
		Hourly:     insights.AnalyzeBuckets(snap.Metrics.HourlyPerformance),
		Daily:      insights.AnalyzeBuckets(snap.Metrics.DailyPerformance),
	}, nil
}

// ScoreReport carries the composite score for a campaign period.
type ScoreReport struct {
	CampaignID       string        `json:"campaign_id"`
	Period           models.Period `json:"period"`
	PerformanceScore float64       `json:"performance_score"`
}

// Score returns the weighted composite performance score for the period.
func (s *ReportService) Score(ctx context.Context, campaignID string, period models.Period) (*ScoreReport, error) {
	snap, err := s.snapshot(ctx, campaignID, period)
	if err != nil {
		return nil, err
	}
	return &ScoreReport{
		CampaignID:       campaignID,
		Period:           snap.Period,
		PerformanceScore: insights.PerformanceScore(snap.Metrics),
	}, nil
}

// ReliabilityReport carries the advisory data-quality score for a
// campaign period along with the validation warnings recorded at sync.
type ReliabilityReport struct {
	CampaignID  string        `json:"campaign_id"`
	Period      models.Period `json:"period"`
	Reliability float64       `json:"reliability"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// Reliability returns the advisory reliability score for the period.
func (s *ReportService) Reliability(ctx context.Context, campaignID string, period models.Period) (*ReliabilityReport, error) {
	snap, err := s.snapshot(ctx, campaignID, period)
	if err != nil {
		return nil, err
	}
	return &ReliabilityReport{
		CampaignID:  campaignID,
		Period:      snap.Period,
		Reliability: insights.ReliabilityScore(snap.Metrics),
		Warnings:    snap.Warnings,
	}, nil
}

// Segments scores the acquisition, engagement, conversion and quality
// funnel segments for the period.
func (s *ReportService) Segments(ctx context.Context, campaignID string, period models.Period) (*insights.SegmentReport, error) {
	snap, err := s.snapshot(ctx, campaignID, period)
	if err != nil {
		return nil, err
	}
	report := insights.AnalyzeSegments(snap.Metrics)
	return &report, nil
}

// History returns per-day stats from the long-retention store.
func (s *ReportService) History(ctx context.Context, campaignID, since, until string) ([]insights.DailyStat, error) {
	if s.history == nil {
		return nil, errors.New("history store not configured")
	}
	return s.history.DailyRange(ctx, campaignID, since, until)
}
