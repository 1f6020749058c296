package insights

// reliabilityChecks is the heuristic checklist behind the advisory
// confidence score. These are weaker than the Validate invariants: failing
// one does not make the data wrong, it makes conclusions drawn from it
// less trustworthy (thin volume, missing breakdowns, unscored quality).
func reliabilityChecks(m NormalizedMetrics) []bool {
	return []bool{
		m.Impressions > 1000,
		m.Clicks > 0,
		m.Spend > 0,
		m.CTR < 100,
		m.Clicks <= m.Impressions,
		m.Conversions <= m.Clicks,
		m.QualityScore != nil,
		len(m.HourlyPerformance) > 0,
		len(m.DailyPerformance) > 0,
	}
}

// ReliabilityScore reduces the heuristic checklist to a 0-100 confidence
// percentage. It never fails and is purely advisory: the UI maps it to
// High/Medium/Low badges, it gates nothing.
func ReliabilityScore(m NormalizedMetrics) float64 {
	checks := reliabilityChecks(m)
	return passRatio(checks) * 100
}

// TrendReliabilityScore runs the checklist over both snapshots of a trend
// comparison and reports one combined percentage. A trend is only as
// trustworthy as its weaker period.
func TrendReliabilityScore(current, previous NormalizedMetrics) float64 {
	checks := append(reliabilityChecks(current), reliabilityChecks(previous)...)
	return passRatio(checks) * 100
}

func passRatio(checks []bool) float64 {
	if len(checks) == 0 {
		return 0
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(checks))
}
