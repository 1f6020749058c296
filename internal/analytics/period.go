// Package analytics orchestrates vendor fetches, metric derivation and
// reporting on top of the storage and cache layers.
package analytics

import (
	"fmt"
	"time"

	"github.com/adlumen/insight-api/internal/models"
)

const dayLayout = "2006-01-02"

// DefaultPeriod returns the trailing seven full days ending today,
// as a half-open range.
func DefaultPeriod(now time.Time) models.Period {
	until := now.UTC().Truncate(24 * time.Hour)
	since := until.AddDate(0, 0, -7)
	return models.Period{
		Since: since.Format(dayLayout),
		Until: until.Format(dayLayout),
	}
}

// PreviousPeriod returns the adjacent period of equal length ending
// where p begins. Trend comparisons use it as the baseline.
func PreviousPeriod(p models.Period) (models.Period, error) {
	since, err := time.Parse(dayLayout, p.Since)
	if err != nil {
		return models.Period{}, fmt.Errorf("bad period start %q: %w", p.Since, err)
	}
	until, err := time.Parse(dayLayout, p.Until)
	if err != nil {
		return models.Period{}, fmt.Errorf("bad period end %q: %w", p.Until, err)
	}
	if !until.After(since) {
		return models.Period{}, fmt.Errorf("period end %q is not after start %q", p.Until, p.Since)
	}

	length := until.Sub(since)
	return models.Period{
		Since: since.Add(-length).Format(dayLayout),
		Until: since.Format(dayLayout),
	}, nil
}
