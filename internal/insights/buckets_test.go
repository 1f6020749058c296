package insights

import (
	"math"
	"reflect"
	"testing"
)

func TestAnalyzeBucketsEmpty(t *testing.T) {
	if got := AnalyzeBuckets(nil); got != nil {
		t.Errorf("AnalyzeBuckets(nil) = %+v, want nil", got)
	}
	if got := AnalyzeBuckets([]BucketStat{}); got != nil {
		t.Errorf("AnalyzeBuckets(empty) = %+v, want nil", got)
	}
}

func TestAnalyzeBucketsRanking(t *testing.T) {
	buckets := []BucketStat{
		{Bucket: 0, Impressions: 100, Clicks: 1, CTR: 1.0},
		{Bucket: 9, Impressions: 100, Clicks: 8, CTR: 8.0},
		{Bucket: 12, Impressions: 100, Clicks: 5, CTR: 5.0},
		{Bucket: 18, Impressions: 100, Clicks: 12, CTR: 12.0},
		{Bucket: 21, Impressions: 100, Clicks: 3, CTR: 3.0},
	}

	a := AnalyzeBuckets(buckets)
	if a == nil {
		t.Fatal("AnalyzeBuckets returned nil for non-empty input")
	}

	if want := []int{18, 9, 12}; !reflect.DeepEqual(a.BestBuckets, want) {
		t.Errorf("best buckets = %v, want %v", a.BestBuckets, want)
	}
	if want := []int{0, 21, 12}; !reflect.DeepEqual(a.WorstBuckets, want) {
		t.Errorf("worst buckets = %v, want %v", a.WorstBuckets, want)
	}
}

func TestAnalyzeBucketsStableTies(t *testing.T) {
	// Equal CTRs keep their original relative order.
	buckets := []BucketStat{
		{Bucket: 2, CTR: 4.0},
		{Bucket: 5, CTR: 4.0},
		{Bucket: 7, CTR: 4.0},
		{Bucket: 11, CTR: 4.0},
	}

	a := AnalyzeBuckets(buckets)
	if want := []int{2, 5, 7}; !reflect.DeepEqual(a.BestBuckets, want) {
		t.Errorf("best buckets = %v, want %v", a.BestBuckets, want)
	}
	if want := []int{2, 5, 7}; !reflect.DeepEqual(a.WorstBuckets, want) {
		t.Errorf("worst buckets = %v, want %v", a.WorstBuckets, want)
	}
}

func TestAnalyzeBucketsShortInput(t *testing.T) {
	buckets := []BucketStat{
		{Bucket: 3, CTR: 2.0},
		{Bucket: 6, CTR: 6.0},
	}

	a := AnalyzeBuckets(buckets)
	if want := []int{6, 3}; !reflect.DeepEqual(a.BestBuckets, want) {
		t.Errorf("best buckets = %v, want %v", a.BestBuckets, want)
	}
	if want := []int{3, 6}; !reflect.DeepEqual(a.WorstBuckets, want) {
		t.Errorf("worst buckets = %v, want %v", a.WorstBuckets, want)
	}
}

func TestAnalyzeBucketsAverages(t *testing.T) {
	buckets := []BucketStat{
		{Bucket: 1, Impressions: 100, Clicks: 10, Conversions: 2, CTR: 10.0},
		{Bucket: 2, Impressions: 300, Clicks: 30, Conversions: 4, CTR: 10.0},
	}

	a := AnalyzeBuckets(buckets)
	avg := a.AverageMetrics
	if math.Abs(avg.Impressions-200) > 1e-9 {
		t.Errorf("avg impressions = %v, want 200", avg.Impressions)
	}
	if math.Abs(avg.Clicks-20) > 1e-9 {
		t.Errorf("avg clicks = %v, want 20", avg.Clicks)
	}
	if math.Abs(avg.Conversions-3) > 1e-9 {
		t.Errorf("avg conversions = %v, want 3", avg.Conversions)
	}
	if math.Abs(avg.CTR-10) > 1e-9 {
		t.Errorf("avg CTR = %v, want 10", avg.CTR)
	}
}

func TestAnalyzeBucketsDoesNotMutateInput(t *testing.T) {
	buckets := []BucketStat{
		{Bucket: 1, CTR: 1.0},
		{Bucket: 2, CTR: 9.0},
		{Bucket: 3, CTR: 5.0},
	}
	original := make([]BucketStat, len(buckets))
	copy(original, buckets)

	AnalyzeBuckets(buckets)

	if !reflect.DeepEqual(buckets, original) {
		t.Errorf("input mutated: %+v, want %+v", buckets, original)
	}
}
