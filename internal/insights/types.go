// Package insights derives campaign performance metrics from raw ad-platform
// reporting rows. Everything in this package is pure: no I/O, no clock, no
// shared state. A single NormalizedMetrics snapshot may be fed to the trend,
// reliability and scoring functions concurrently.
package insights

// RawInsightRecord is one decoded insight row as returned by the ad
// platform's reporting API. The API gives no schema guarantee: numeric
// values arrive as strings, numbers or null depending on the field and the
// age of the campaign, and whole fields or breakdowns may be missing. An
// empty record (a brand-new campaign with no insight row yet) is valid
// input everywhere.
type RawInsightRecord map[string]any

// RankingUnknown is the default for ranking labels the platform did not
// report.
const RankingUnknown = "UNKNOWN"

// NormalizedMetrics is the canonical per-campaign metrics snapshot.
//
// Counter and ratio fields are always present and default to zero when the
// source data is absent or unparseable. Quality fields are pointers because
// "no score yet" and "score of zero" are different facts: nil is preserved
// through the whole pipeline and only collapsed to a default at scoring
// time. Breakdown collections are never nil, only empty.
type NormalizedMetrics struct {
	// Base counters.
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`

	// Extended counters.
	Reach          float64 `json:"reach"`
	Frequency      float64 `json:"frequency"`
	UniqueClicks   float64 `json:"unique_clicks"`
	OutboundClicks float64 `json:"outbound_clicks"`
	LinkClicks     float64 `json:"link_clicks"`
	PageEngagement float64 `json:"page_engagement"`
	Leads          float64 `json:"leads"`
	Purchases      float64 `json:"purchases"`

	// Derived ratios. Guarded division: a zero denominator yields zero,
	// never NaN or Inf.
	CTR                float64 `json:"ctr"`
	CPC                float64 `json:"cpc"`
	ROAS               float64 `json:"roas"`
	UniqueCTR          float64 `json:"unique_ctr"`
	CostPerUniqueClick float64 `json:"cost_per_unique_click"`
	CostPerLead        float64 `json:"cost_per_lead"`
	CostPerPurchase    float64 `json:"cost_per_purchase"`
	EngagementRate     float64 `json:"engagement_rate"`
	OutboundClicksCTR  float64 `json:"outbound_clicks_ctr"`

	// Quality and delivery diagnostics. Nil means the platform did not
	// report a value.
	QualityScore                  *float64 `json:"quality_score"`
	AdRelevanceScore              *float64 `json:"ad_relevance_score"`
	LandingPageScore              *float64 `json:"landing_page_score"`
	AudienceSize                  *float64 `json:"audience_size"`
	AudienceOverlap               *float64 `json:"audience_overlap"`
	ReachEstimate                 *float64 `json:"reach_estimate"`
	ImpressionShare               *float64 `json:"impression_share"`
	SearchImpressionShare         *float64 `json:"search_impression_share"`
	SearchRankLostImpressionShare *float64 `json:"search_rank_lost_impression_share"`

	// Ranking labels, e.g. "ABOVE_AVERAGE". Default RankingUnknown.
	QualityRanking        string `json:"quality_ranking"`
	EngagementRateRanking string `json:"engagement_rate_ranking"`
	ConversionRateRanking string `json:"conversion_rate_ranking"`

	// Breakdowns. Each element recomputes its own CTR from its own
	// clicks and impressions.
	AgeTargetingPerformance    []BreakdownStat `json:"age_targeting_performance"`
	GenderTargetingPerformance []BreakdownStat `json:"gender_targeting_performance"`
	PlacementPerformance       []BreakdownStat `json:"placement_performance"`
	HourlyPerformance          []BucketStat    `json:"hourly_performance"`
	DailyPerformance           []BucketStat    `json:"daily_performance"`
	DailyStats                 []DailyStat     `json:"daily_stats"`
}

// BreakdownStat is one row of a dimensional breakdown (age range, gender or
// placement).
type BreakdownStat struct {
	Key         string  `json:"key"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"`
}

// BucketStat is one fixed time slice: hour of day 0-23 or day of week 0-6.
type BucketStat struct {
	Bucket      int     `json:"bucket"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"`
}

// DailyStat is one calendar-day row from the platform's daily series.
type DailyStat struct {
	Date        string  `json:"date"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	CTR         float64 `json:"ctr"`
}
