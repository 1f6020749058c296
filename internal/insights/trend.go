package insights

// TrendDirection classifies period-over-period movement of one metric.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// MetricTrend compares the current value of one metric against the prior
// period. ChangePercentage is zero whenever the previous value is zero:
// the division-by-zero guard takes precedence over signalling "infinite
// growth", which keeps brand-new campaigns from rendering as +Inf%.
type MetricTrend struct {
	Current          float64        `json:"current"`
	Previous         float64        `json:"previous"`
	Change           float64        `json:"change"`
	ChangePercentage float64        `json:"change_percentage"`
	Trend            TrendDirection `json:"trend"`
}

// Tracked trend fields, in stable display order.
var trendFields = []struct {
	name  string
	value func(NormalizedMetrics) float64
}{
	{"spend", func(m NormalizedMetrics) float64 { return m.Spend }},
	{"impressions", func(m NormalizedMetrics) float64 { return m.Impressions }},
	{"clicks", func(m NormalizedMetrics) float64 { return m.Clicks }},
	{"conversions", func(m NormalizedMetrics) float64 { return m.Conversions }},
	{"revenue", func(m NormalizedMetrics) float64 { return m.Revenue }},
	{"ctr", func(m NormalizedMetrics) float64 { return m.CTR }},
	{"cpc", func(m NormalizedMetrics) float64 { return m.CPC }},
	{"roas", func(m NormalizedMetrics) float64 { return m.ROAS }},
}

// CompareTrends produces one MetricTrend per tracked field. Comparing a
// snapshot to itself yields change 0 and TrendStable everywhere.
func CompareTrends(current, previous NormalizedMetrics) map[string]MetricTrend {
	trends := make(map[string]MetricTrend, len(trendFields))
	for _, f := range trendFields {
		trends[f.name] = newTrend(f.value(current), f.value(previous))
	}
	return trends
}

func newTrend(current, previous float64) MetricTrend {
	change := current - previous
	t := MetricTrend{
		Current:          current,
		Previous:         previous,
		Change:           change,
		ChangePercentage: SafePercentage(change, previous, 0),
		Trend:            TrendStable,
	}
	switch {
	case change > 0:
		t.Trend = TrendUp
	case change < 0:
		t.Trend = TrendDown
	}
	return t
}
