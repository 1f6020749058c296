package insights

// Raw record keys recognised by Transform. Anything else in the record is
// ignored.
const (
	keyImpressions    = "impressions"
	keyClicks         = "clicks"
	keySpend          = "spend"
	keyConversions    = "conversions"
	keyRevenue        = "revenue"
	keyReach          = "reach"
	keyFrequency      = "frequency"
	keyUniqueClicks   = "unique_clicks"
	keyOutboundClicks = "outbound_clicks"
	keyLinkClicks     = "link_clicks"
	keyPageEngagement = "page_engagement"
	keyLeads          = "leads"
	keyPurchases      = "purchases"
)

// Transform converts one raw insight row into a NormalizedMetrics snapshot.
//
// The transform is deliberately fail-open: vendor data is routinely partial
// (a brand-new campaign has no insight row at all), so a malformed or
// missing field never produces an error. Counters degrade to zero,
// quality fields to nil, rankings to RankingUnknown and breakdowns to
// empty slices. Dashboards render zeros instead of error pages; the strict
// Validate guard exists for callers that would rather refuse to show
// implausible data.
func Transform(raw RawInsightRecord) NormalizedMetrics {
	m := NormalizedMetrics{
		Impressions: raw.number(keyImpressions),
		Clicks:      raw.number(keyClicks),
		Spend:       raw.number(keySpend),
		Conversions: raw.number(keyConversions),
		Revenue:     raw.number(keyRevenue),

		Reach:          raw.number(keyReach),
		Frequency:      raw.number(keyFrequency),
		UniqueClicks:   raw.number(keyUniqueClicks),
		OutboundClicks: raw.number(keyOutboundClicks),
		LinkClicks:     raw.number(keyLinkClicks),
		PageEngagement: raw.number(keyPageEngagement),
		Leads:          raw.number(keyLeads),
		Purchases:      raw.number(keyPurchases),

		QualityScore:                  raw.nullable("quality_score"),
		AdRelevanceScore:              raw.nullable("ad_relevance_score"),
		LandingPageScore:              raw.nullable("landing_page_score"),
		AudienceSize:                  raw.nullable("audience_size"),
		AudienceOverlap:               raw.nullable("audience_overlap"),
		ReachEstimate:                 raw.nullable("reach_estimate"),
		ImpressionShare:               raw.nullable("impression_share"),
		SearchImpressionShare:         raw.nullable("search_impression_share"),
		SearchRankLostImpressionShare: raw.nullable("search_rank_lost_impression_share"),

		QualityRanking:        raw.ranking("quality_ranking"),
		EngagementRateRanking: raw.ranking("engagement_rate_ranking"),
		ConversionRateRanking: raw.ranking("conversion_rate_ranking"),
	}

	m.CTR = SafePercentage(m.Clicks, m.Impressions, 0)
	m.CPC = SafeDiv(m.Spend, m.Clicks, 0)
	m.ROAS = SafeDiv(m.Revenue, m.Spend, 0)
	m.UniqueCTR = SafePercentage(m.UniqueClicks, m.Reach, 0)
	m.CostPerUniqueClick = SafeDiv(m.Spend, m.UniqueClicks, 0)
	m.CostPerLead = SafeDiv(m.Spend, m.Leads, 0)
	m.CostPerPurchase = SafeDiv(m.Spend, m.Purchases, 0)
	m.EngagementRate = SafePercentage(m.PageEngagement, m.Impressions, 0)
	m.OutboundClicksCTR = SafePercentage(m.OutboundClicks, m.Impressions, 0)

	m.AgeTargetingPerformance = raw.breakdown("age_targeting_performance", "age")
	m.GenderTargetingPerformance = raw.breakdown("gender_targeting_performance", "gender")
	m.PlacementPerformance = raw.breakdown("placement_performance", "placement")
	m.HourlyPerformance = raw.buckets("hourly_performance", "hour")
	m.DailyPerformance = raw.buckets("daily_performance", "day")
	m.DailyStats = raw.dailyStats("daily_stats")

	return m
}

func (r RawInsightRecord) number(key string) float64 {
	return ParseFloat(r[key])
}

func (r RawInsightRecord) nullable(key string) *float64 {
	return ParseNullableFloat(r[key])
}

func (r RawInsightRecord) ranking(key string) string {
	if s, ok := r[key].(string); ok && s != "" {
		return s
	}
	return RankingUnknown
}

// rows normalizes a raw collection value to a slice of records. Absent or
// malformed collections come back empty, never nil panics downstream.
func (r RawInsightRecord) rows(key string) []RawInsightRecord {
	list, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]RawInsightRecord, 0, len(list))
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, RawInsightRecord(obj))
		}
	}
	return out
}

func (r RawInsightRecord) breakdown(key, labelKey string) []BreakdownStat {
	rows := r.rows(key)
	out := make([]BreakdownStat, 0, len(rows))
	for _, row := range rows {
		label, _ := row[labelKey].(string)
		s := BreakdownStat{
			Key:         label,
			Impressions: row.number(keyImpressions),
			Clicks:      row.number(keyClicks),
			Spend:       row.number(keySpend),
			Conversions: row.number(keyConversions),
		}
		s.CTR = SafePercentage(s.Clicks, s.Impressions, 0)
		out = append(out, s)
	}
	return out
}

func (r RawInsightRecord) buckets(key, bucketKey string) []BucketStat {
	rows := r.rows(key)
	out := make([]BucketStat, 0, len(rows))
	for _, row := range rows {
		s := BucketStat{
			Bucket:      int(row.number(bucketKey)),
			Impressions: row.number(keyImpressions),
			Clicks:      row.number(keyClicks),
			Conversions: row.number(keyConversions),
		}
		s.CTR = SafePercentage(s.Clicks, s.Impressions, 0)
		out = append(out, s)
	}
	return out
}

func (r RawInsightRecord) dailyStats(key string) []DailyStat {
	rows := r.rows(key)
	out := make([]DailyStat, 0, len(rows))
	for _, row := range rows {
		date, _ := row["date"].(string)
		s := DailyStat{
			Date:        date,
			Impressions: row.number(keyImpressions),
			Clicks:      row.number(keyClicks),
			Spend:       row.number(keySpend),
			Conversions: row.number(keyConversions),
			Revenue:     row.number(keyRevenue),
		}
		s.CTR = SafePercentage(s.Clicks, s.Impressions, 0)
		out = append(out, s)
	}
	return out
}
