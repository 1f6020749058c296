package insights

import "math"

// Composite score weights. They sum to 1.0.
const (
	weightCTR            = 0.20
	weightConversionRate = 0.25
	weightROAS           = 0.25
	weightEngagement     = 0.15
	weightQuality        = 0.15
)

// defaultQualityScore stands in when the platform has not scored a
// campaign yet (0-10 scale).
const defaultQualityScore = 5

// PerformanceScore combines five normalized sub-scores into a single
// weighted 0-100 composite. Four terms are capped at 100; the quality term
// is not: the platform reports quality on a 0-10 scale, so the term stays
// at or below 100 in practice, and an out-of-scale value is allowed to
// push the composite above 100 rather than being silently clamped.
func PerformanceScore(m NormalizedMetrics) float64 {
	conversionRate := SafePercentage(m.Conversions, m.Clicks, 0)

	ctrScore := math.Min(m.CTR*5, 100)
	conversionScore := math.Min(conversionRate*5, 100)
	roasScore := math.Min(m.ROAS*10, 100)
	engagementScore := math.Min(m.EngagementRate*2, 100)
	qualityScore := SafeNumber(m.QualityScore, defaultQualityScore) * 10

	return ctrScore*weightCTR +
		conversionScore*weightConversionRate +
		roasScore*weightROAS +
		engagementScore*weightEngagement +
		qualityScore*weightQuality
}

// Segment is one diagnostic slice of the funnel: a headline score plus the
// sub-metrics behind it. Segment scores are raw ratios and intentionally
// unclamped; engagement above 100% (several engagements per click) is a
// real signal, not an error.
type Segment struct {
	Score   float64            `json:"score"`
	Metrics map[string]float64 `json:"metrics"`
}

// SegmentReport partitions a snapshot into acquisition, engagement,
// conversion and quality segments. OverallScore is the unweighted mean of
// the four segment scores.
type SegmentReport struct {
	Segments     map[string]Segment `json:"segments"`
	OverallScore float64            `json:"overall_score"`
}

// AnalyzeSegments builds the four-segment funnel diagnostic for one
// snapshot.
func AnalyzeSegments(m NormalizedMetrics) SegmentReport {
	segments := map[string]Segment{
		"acquisition": {
			Score: SafePercentage(m.Clicks, m.Impressions, 0),
			Metrics: map[string]float64{
				"ctr":   m.CTR,
				"cpc":   m.CPC,
				"reach": m.Reach,
			},
		},
		"engagement": {
			Score: SafePercentage(m.PageEngagement, m.Clicks, 0),
			Metrics: map[string]float64{
				"engagement_rate":   m.EngagementRate,
				"frequency":         m.Frequency,
				"unique_click_rate": SafePercentage(m.UniqueClicks, m.Clicks, 0),
			},
		},
		"conversion": {
			Score: SafePercentage(m.Conversions, m.Clicks, 0),
			Metrics: map[string]float64{
				"conversion_rate":     SafePercentage(m.Conversions, m.Clicks, 0),
				"cost_per_conversion": SafeDiv(m.Spend, m.Conversions, 0),
				"roas":                m.ROAS,
			},
		},
		"quality": {
			Score: SafeNumber(m.QualityScore, defaultQualityScore) * 10,
			Metrics: map[string]float64{
				"quality_score":      SafeNumber(m.QualityScore, defaultQualityScore),
				"ad_relevance_score": SafeNumber(m.AdRelevanceScore, 0),
				"landing_page_score": SafeNumber(m.LandingPageScore, 0),
			},
		},
	}

	var total float64
	for _, s := range segments {
		total += s.Score
	}

	return SegmentReport{
		Segments:     segments,
		OverallScore: total / float64(len(segments)),
	}
}
