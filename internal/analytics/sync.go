package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adlumen/insight-api/internal/cache"
	"github.com/adlumen/insight-api/internal/hubspot"
	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/metrics"
	"github.com/adlumen/insight-api/internal/models"
	"github.com/adlumen/insight-api/internal/storage"
)

// ErrCampaignNotFound is returned when a sync or report targets an
// unknown campaign.
var ErrCampaignNotFound = errors.New("campaign not found")

// InsightFetcher pulls raw insight records from the ad platform.
type InsightFetcher interface {
	FetchInsights(ctx context.Context, campaignExternalID string, period models.Period) ([]insights.RawInsightRecord, error)
}

// DealFetcher pulls CRM deal outcomes attributed to a campaign.
type DealFetcher interface {
	DealsByUTMCampaign(ctx context.Context, utmCampaign string) (hubspot.DealStats, error)
}

// SyncService fetches vendor data, derives normalized metrics and
// persists the resulting snapshots.
type SyncService struct {
	campaigns storage.CampaignRepo
	snapshots storage.SnapshotStore
	history   storage.HistoryStore
	runs      storage.SyncRunStore
	cache     cache.SnapshotCache
	ads       InsightFetcher
	crm       DealFetcher
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewSyncService wires a sync service. crm and history may be nil when
// the corresponding backends are not configured.
func NewSyncService(
	campaigns storage.CampaignRepo,
	snapshots storage.SnapshotStore,
	history storage.HistoryStore,
	runs storage.SyncRunStore,
	snapCache cache.SnapshotCache,
	ads InsightFetcher,
	crm DealFetcher,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SyncService {
	return &SyncService{
		campaigns: campaigns,
		snapshots: snapshots,
		history:   history,
		runs:      runs,
		cache:     snapCache,
		ads:       ads,
		crm:       crm,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Run syncs every active campaign for the period and records the run.
// Per-campaign failures degrade the run to partial instead of aborting it.
func (s *SyncService) Run(ctx context.Context, period models.Period) (*models.SyncRun, error) {
	run := &models.SyncRun{
		ID:        uuid.NewString(),
		Status:    models.SyncStatusRunning,
		StartedAt: s.now(),
	}
	if err := s.runs.RecordSyncRun(ctx, run); err != nil {
		s.logger.Warn("failed to record sync run start", zap.Error(err))
	}

	campaigns, err := s.campaigns.ListCampaigns(ctx)
	if err != nil {
		run.Status = models.SyncStatusFailed
		run.Error = err.Error()
		run.FinishedAt = s.now()
		_ = s.runs.RecordSyncRun(ctx, run)
		s.metrics.RecordSyncRun(string(run.Status), run.FinishedAt.Sub(run.StartedAt))
		return run, fmt.Errorf("failed to list campaigns for sync: %w", err)
	}

	for _, c := range campaigns {
		if c.Status != models.CampaignStatusActive {
			continue
		}
		run.CampaignsTotal++

		if _, err := s.SyncCampaign(ctx, c, period); err != nil {
			run.CampaignsErr++
			s.metrics.RecordSyncCampaign("error")
			s.logger.Error("campaign sync failed",
				zap.String("campaign_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		run.CampaignsOK++
		s.metrics.RecordSyncCampaign("ok")
	}

	switch {
	case run.CampaignsErr == 0:
		run.Status = models.SyncStatusCompleted
	case run.CampaignsOK > 0:
		run.Status = models.SyncStatusPartial
	default:
		run.Status = models.SyncStatusFailed
	}
	run.FinishedAt = s.now()

	if err := s.runs.RecordSyncRun(ctx, run); err != nil {
		s.logger.Warn("failed to record sync run result", zap.Error(err))
	}
	s.metrics.RecordSyncRun(string(run.Status), run.FinishedAt.Sub(run.StartedAt))

	s.logger.Info("sync run finished",
		zap.String("run_id", run.ID),
		zap.String("status", string(run.Status)),
		zap.Int("campaigns_ok", run.CampaignsOK),
		zap.Int("campaigns_err", run.CampaignsErr),
	)
	return run, nil
}

// SyncCampaign fetches, derives and persists one campaign snapshot.
func (s *SyncService) SyncCampaign(ctx context.Context, c *models.Campaign, period models.Period) (*models.Snapshot, error) {
	records, err := s.ads.FetchInsights(ctx, c.ExternalID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch insights: %w", err)
	}

	raw := insights.RawInsightRecord{}
	if len(records) > 0 {
		raw = records[0]
	}

	m := insights.Transform(raw)
	s.metrics.RecordTransform()

	if s.crm != nil && c.UTMCampaign != "" {
		s.enrichFromCRM(ctx, c, &m)
	}

	snap := &models.Snapshot{
		ID:         uuid.NewString(),
		CampaignID: c.ID,
		Period:     period,
		Metrics:    m,
		FetchedAt:  s.now(),
	}

	if err := insights.Validate(m); err != nil {
		var verr *insights.ValidationError
		if errors.As(err, &verr) {
			snap.Warnings = verr.Violations
			for _, rule := range verr.Violations {
				s.metrics.RecordValidationFailure(rule)
			}
			s.logger.Warn("snapshot failed invariant checks",
				zap.String("campaign_id", c.ID),
				zap.Strings("violations", verr.Violations),
			)
		} else {
			return nil, err
		}
	}

	if err := s.snapshots.PutSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	if s.history != nil && len(m.DailyStats) > 0 {
		if err := s.history.AppendDaily(ctx, c.ID, m.DailyStats); err != nil {
			// History is best-effort long retention; the snapshot is already durable.
			s.logger.Warn("failed to append daily history",
				zap.String("campaign_id", c.ID),
				zap.Error(err),
			)
		}
	}

	if err := s.cache.Set(ctx, snap); err != nil {
		s.logger.Warn("failed to cache snapshot", zap.Error(err))
	}

	return snap, nil
}

// SyncCampaignByID looks up a campaign and syncs it.
func (s *SyncService) SyncCampaignByID(ctx context.Context, campaignID string, period models.Period) (*models.Snapshot, error) {
	c, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	if c == nil {
		return nil, ErrCampaignNotFound
	}
	return s.SyncCampaign(ctx, c, period)
}

// enrichFromCRM overlays CRM deal outcomes onto platform metrics. CRM
// is the source of truth for leads, purchases and revenue when the
// campaign carries a UTM tag; cost ratios are re-derived afterwards.
func (s *SyncService) enrichFromCRM(ctx context.Context, c *models.Campaign, m *insights.NormalizedMetrics) {
	deals, err := s.crm.DealsByUTMCampaign(ctx, c.UTMCampaign)
	if err != nil {
		// Enrichment is additive; platform metrics stand on their own.
		s.logger.Warn("CRM enrichment failed",
			zap.String("campaign_id", c.ID),
			zap.Error(err),
		)
		return
	}

	m.Leads = deals.Leads
	m.Purchases = deals.Purchases
	m.Revenue = deals.Revenue
	m.ROAS = insights.SafeDiv(m.Revenue, m.Spend, 0)
	m.CostPerLead = insights.SafeDiv(m.Spend, m.Leads, 0)
	m.CostPerPurchase = insights.SafeDiv(m.Spend, m.Purchases, 0)
}
