package insights

import "sort"

// BucketAverages holds the per-bucket arithmetic mean of each tracked
// field.
type BucketAverages struct {
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"`
}

// BucketAnalysis ranks time buckets by CTR to surface the strongest and
// weakest hours or weekdays of a campaign.
type BucketAnalysis struct {
	BestBuckets    []int          `json:"best_buckets"`
	WorstBuckets   []int          `json:"worst_buckets"`
	AverageMetrics BucketAverages `json:"average_metrics"`
}

// AnalyzeBuckets ranks the given buckets by CTR and averages their
// metrics. Returns nil for an empty input. The input slice is never
// mutated: both rankings sort private copies, and ties keep the original
// relative order so results are deterministic.
func AnalyzeBuckets(buckets []BucketStat) *BucketAnalysis {
	if len(buckets) == 0 {
		return nil
	}

	best := make([]BucketStat, len(buckets))
	copy(best, buckets)
	sort.SliceStable(best, func(i, j int) bool { return best[i].CTR > best[j].CTR })

	worst := make([]BucketStat, len(buckets))
	copy(worst, buckets)
	sort.SliceStable(worst, func(i, j int) bool { return worst[i].CTR < worst[j].CTR })

	n := len(buckets)
	a := &BucketAnalysis{
		BestBuckets:  bucketKeys(best, 3),
		WorstBuckets: bucketKeys(worst, 3),
	}

	// Incremental averages: summing field/n per element instead of
	// dividing a grand total keeps intermediate sums small.
	inv := 1 / float64(n)
	for _, b := range buckets {
		a.AverageMetrics.Impressions += b.Impressions * inv
		a.AverageMetrics.Clicks += b.Clicks * inv
		a.AverageMetrics.Conversions += b.Conversions * inv
		a.AverageMetrics.CTR += b.CTR * inv
	}

	return a
}

func bucketKeys(sorted []BucketStat, limit int) []int {
	if len(sorted) < limit {
		limit = len(sorted)
	}
	keys := make([]int, limit)
	for i := 0; i < limit; i++ {
		keys[i] = sorted[i].Bucket
	}
	return keys
}
