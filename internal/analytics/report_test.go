package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adlumen/insight-api/internal/cache"
	"github.com/adlumen/insight-api/internal/insights"
	"github.com/adlumen/insight-api/internal/models"
	"github.com/adlumen/insight-api/internal/storage"
)

func TestDefaultPeriod(t *testing.T) {
	now := time.Date(2026, 8, 15, 13, 30, 0, 0, time.UTC)
	p := DefaultPeriod(now)
	if p.Since != "2026-08-08" || p.Until != "2026-08-15" {
		t.Errorf("DefaultPeriod = %+v, want 2026-08-08..2026-08-15", p)
	}
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		name    string
		period  models.Period
		want    models.Period
		wantErr bool
	}{
		{
			name:   "one week",
			period: models.Period{Since: "2026-08-08", Until: "2026-08-15"},
			want:   models.Period{Since: "2026-08-01", Until: "2026-08-08"},
		},
		{
			name:   "single day",
			period: models.Period{Since: "2026-08-14", Until: "2026-08-15"},
			want:   models.Period{Since: "2026-08-13", Until: "2026-08-14"},
		},
		{
			name:   "across month boundary",
			period: models.Period{Since: "2026-08-01", Until: "2026-08-31"},
			want:   models.Period{Since: "2026-07-02", Until: "2026-08-01"},
		},
		{
			name:    "inverted range",
			period:  models.Period{Since: "2026-08-15", Until: "2026-08-08"},
			wantErr: true,
		},
		{
			name:    "garbage date",
			period:  models.Period{Since: "yesterday", Until: "2026-08-15"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PreviousPeriod(tt.period)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("PreviousPeriod: %v", err)
			}
			if got != tt.want {
				t.Errorf("PreviousPeriod = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type reportFixture struct {
	snapshots *storage.MemorySnapshotStore
	cache     *cache.MemoryCache
	svc       *ReportService
}

func newReportFixture(syncer *SyncService) *reportFixture {
	f := &reportFixture{
		snapshots: storage.NewMemorySnapshotStore(),
		cache:     cache.NewMemoryCache(time.Minute),
	}
	f.svc = NewReportService(f.snapshots, storage.NewMemoryHistoryStore(), f.cache,
		syncer, zap.NewNop(), testMetrics)
	return f
}

func putSnapshot(t *testing.T, store *storage.MemorySnapshotStore, campaignID string, period models.Period, m insights.NormalizedMetrics) {
	t.Helper()
	err := store.PutSnapshot(context.Background(), &models.Snapshot{
		ID:         "s-" + campaignID + "-" + period.Since,
		CampaignID: campaignID,
		Period:     period,
		Metrics:    m,
		FetchedAt:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestInsightsFromStore(t *testing.T) {
	f := newReportFixture(nil)
	putSnapshot(t, f.snapshots, "c1", testPeriod, insights.NormalizedMetrics{
		Impressions: 2000, Clicks: 100, Spend: 50, CTR: 5,
	})

	report, err := f.svc.Insights(context.Background(), "c1", testPeriod)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if report.Metrics.Impressions != 2000 {
		t.Errorf("impressions = %v, want 2000", report.Metrics.Impressions)
	}
	if report.Reliability <= 0 || report.Reliability > 100 {
		t.Errorf("reliability = %v, want in (0, 100]", report.Reliability)
	}
	if report.PerformanceScore <= 0 {
		t.Errorf("performance score = %v, want > 0", report.PerformanceScore)
	}

	// The store hit should have warmed the cache.
	if _, hit, _ := f.cache.Get(context.Background(), "c1", testPeriod); !hit {
		t.Error("snapshot should be cached after a store read")
	}
}

func TestInsightsNoSnapshotNoSyncer(t *testing.T) {
	f := newReportFixture(nil)
	_, err := f.svc.Insights(context.Background(), "c1", testPeriod)
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestInsightsOnDemandSync(t *testing.T) {
	sf := newSyncFixture(nil)
	c := &models.Campaign{ID: "c1", ExternalID: "ext-1", Name: "n", Status: models.CampaignStatusActive}
	if err := sf.campaigns.UpsertCampaign(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	sf.ads.records["ext-1"] = []insights.RawInsightRecord{{
		"impressions": float64(1000), "clicks": float64(40),
	}}

	svc := NewReportService(sf.snapshots, sf.history, sf.cache, sf.svc, zap.NewNop(), testMetrics)
	report, err := svc.Insights(context.Background(), "c1", testPeriod)
	if err != nil {
		t.Fatalf("Insights with cold store: %v", err)
	}
	if report.Metrics.CTR != 4 {
		t.Errorf("ctr = %v, want 4", report.Metrics.CTR)
	}
	if sf.ads.calls != 1 {
		t.Errorf("vendor calls = %d, want 1", sf.ads.calls)
	}
}

func TestTrends(t *testing.T) {
	f := newReportFixture(nil)
	prev, _ := PreviousPeriod(testPeriod)

	putSnapshot(t, f.snapshots, "c1", testPeriod, insights.NormalizedMetrics{
		Impressions: 3000, Clicks: 150, Spend: 90, CTR: 5,
	})
	putSnapshot(t, f.snapshots, "c1", prev, insights.NormalizedMetrics{
		Impressions: 2000, Clicks: 100, Spend: 100, CTR: 5,
	})

	report, err := f.svc.Trends(context.Background(), "c1", testPeriod)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if report.PreviousPeriod != prev {
		t.Errorf("previous period = %+v, want %+v", report.PreviousPeriod, prev)
	}
	imp := report.Trends["impressions"]
	if imp.Trend != insights.TrendUp || imp.ChangePercentage != 50 {
		t.Errorf("impressions trend = %+v, want up 50%%", imp)
	}
	spend := report.Trends["spend"]
	if spend.Trend != insights.TrendDown {
		t.Errorf("spend trend = %+v, want down", spend)
	}
	ctr := report.Trends["ctr"]
	if ctr.Trend != insights.TrendStable {
		t.Errorf("ctr trend = %+v, want stable", ctr)
	}
}

func TestBucketsAndSegments(t *testing.T) {
	f := newReportFixture(nil)
	putSnapshot(t, f.snapshots, "c1", testPeriod, insights.NormalizedMetrics{
		Impressions: 1000, Clicks: 100,
		HourlyPerformance: []insights.BucketStat{
			{Bucket: 9, Impressions: 100, Clicks: 10, CTR: 10},
			{Bucket: 14, Impressions: 100, Clicks: 2, CTR: 2},
		},
	})

	buckets, err := f.svc.Buckets(context.Background(), "c1", testPeriod)
	if err != nil {
		t.Fatalf("Buckets: %v", err)
	}
	if buckets.Hourly == nil || buckets.Hourly.BestBuckets[0] != 9 {
		t.Errorf("hourly analysis = %+v, want best bucket 9", buckets.Hourly)
	}
	if buckets.Daily != nil {
		t.Error("daily analysis should be nil without daily buckets")
	}

	segments, err := f.svc.Segments(context.Background(), "c1", testPeriod)
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if got := segments.Segments["acquisition"].Score; got != 10 {
		t.Errorf("acquisition score = %v, want 10", got)
	}
}

func TestScoreAndReliability(t *testing.T) {
	f := newReportFixture(nil)
	putSnapshot(t, f.snapshots, "c1", testPeriod, insights.NormalizedMetrics{
		Impressions: 2000, Clicks: 100, Spend: 50, Revenue: 150, CTR: 5, ROAS: 3,
	})

	score, err := f.svc.Score(context.Background(), "c1", testPeriod)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score.PerformanceScore <= 0 {
		t.Errorf("performance score = %v, want > 0", score.PerformanceScore)
	}

	rel, err := f.svc.Reliability(context.Background(), "c1", testPeriod)
	if err != nil {
		t.Fatalf("Reliability: %v", err)
	}
	if rel.Reliability <= 0 || rel.Reliability > 100 {
		t.Errorf("reliability = %v, want in (0, 100]", rel.Reliability)
	}
	if len(rel.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", rel.Warnings)
	}
}
