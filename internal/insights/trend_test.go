package insights

import (
	"math"
	"testing"
)

func TestCompareTrendsSelf(t *testing.T) {
	m := Transform(RawInsightRecord{
		"impressions": float64(1000),
		"clicks":      float64(50),
		"spend":       float64(100),
		"conversions": float64(5),
		"revenue":     float64(500),
	})

	trends := CompareTrends(m, m)
	if len(trends) != 8 {
		t.Fatalf("tracked %d fields, want 8", len(trends))
	}
	for field, tr := range trends {
		if tr.Change != 0 {
			t.Errorf("%s: change = %v, want 0", field, tr.Change)
		}
		if tr.ChangePercentage != 0 {
			t.Errorf("%s: change percentage = %v, want 0", field, tr.ChangePercentage)
		}
		if tr.Trend != TrendStable {
			t.Errorf("%s: trend = %q, want stable", field, tr.Trend)
		}
	}
}

func TestCompareTrendsDirections(t *testing.T) {
	current := NormalizedMetrics{Spend: 150, Impressions: 800, Clicks: 50}
	previous := NormalizedMetrics{Spend: 100, Impressions: 1000, Clicks: 50}

	trends := CompareTrends(current, previous)

	spend := trends["spend"]
	if spend.Trend != TrendUp || spend.Change != 50 {
		t.Errorf("spend trend = %+v, want up by 50", spend)
	}
	if math.Abs(spend.ChangePercentage-50) > 1e-9 {
		t.Errorf("spend change percentage = %v, want 50", spend.ChangePercentage)
	}

	imps := trends["impressions"]
	if imps.Trend != TrendDown || imps.Change != -200 {
		t.Errorf("impressions trend = %+v, want down by 200", imps)
	}
	if math.Abs(imps.ChangePercentage+20) > 1e-9 {
		t.Errorf("impressions change percentage = %v, want -20", imps.ChangePercentage)
	}

	if trends["clicks"].Trend != TrendStable {
		t.Errorf("clicks trend = %q, want stable", trends["clicks"].Trend)
	}
}

func TestCompareTrendsZeroPrevious(t *testing.T) {
	// A campaign that just started spending must not render as +Inf%.
	current := NormalizedMetrics{Spend: 100}
	previous := NormalizedMetrics{}

	spend := CompareTrends(current, previous)["spend"]
	if spend.Change != 100 {
		t.Errorf("change = %v, want 100", spend.Change)
	}
	if spend.ChangePercentage != 0 {
		t.Errorf("change percentage = %v, want 0 for zero previous", spend.ChangePercentage)
	}
	if spend.Trend != TrendUp {
		t.Errorf("trend = %q, want up", spend.Trend)
	}
}
