package insights

import (
	"fmt"
	"strings"
)

// ValidationError reports every invariant a metrics snapshot violates.
// Logically impossible states (clicks exceeding impressions, negative
// spend) signal an upstream bug or vendor data corruption, not a "zero"
// case, so callers get the full list at once instead of fixing violations
// one re-run at a time.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("metrics validation failed: %s", strings.Join(e.Violations, "; "))
}

// invariantChecks is the fixed rule list evaluated by Validate. A rule
// function returns true when the invariant HOLDS.
var invariantChecks = []struct {
	rule string
	ok   func(NormalizedMetrics) bool
}{
	{"clicks must not exceed impressions", func(m NormalizedMetrics) bool { return m.Clicks <= m.Impressions }},
	{"conversions must not exceed clicks", func(m NormalizedMetrics) bool { return m.Conversions <= m.Clicks }},
	{"spend must not be negative", func(m NormalizedMetrics) bool { return m.Spend >= 0 }},
	{"revenue must not be negative", func(m NormalizedMetrics) bool { return m.Revenue >= 0 }},
	{"ctr must not exceed 100%", func(m NormalizedMetrics) bool { return m.CTR <= 100 }},
	{"unique clicks must not exceed clicks", func(m NormalizedMetrics) bool { return m.UniqueClicks <= m.Clicks }},
	{"leads must not exceed conversions", func(m NormalizedMetrics) bool { return m.Leads <= m.Conversions }},
	{"purchases must not exceed conversions", func(m NormalizedMetrics) bool { return m.Purchases <= m.Conversions }},
}

// Validate runs the strict invariant checklist over a snapshot and returns
// a *ValidationError naming every broken rule, or nil when the snapshot is
// internally consistent. An all-zero snapshot passes.
//
// This is the fail-closed counterpart to the fail-open Transform: callers
// decide whether a violation blocks rendering or merely shows a warning.
func Validate(m NormalizedMetrics) error {
	var violations []string
	for _, c := range invariantChecks {
		if !c.ok(m) {
			violations = append(violations, c.rule)
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
