package insights

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SafeDiv returns numerator/denominator, or def when the denominator is
// zero or the quotient is not finite. Negative values pass through
// unchanged; the guarantee here is only against division-by-zero and
// NaN/Inf propagation.
func SafeDiv(numerator, denominator, def float64) float64 {
	if denominator == 0 {
		return def
	}
	q := numerator / denominator
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return def
	}
	return q
}

// SafePercentage is SafeDiv scaled to a percentage.
func SafePercentage(numerator, denominator, def float64) float64 {
	return SafeDiv(numerator, denominator, def) * 100
}

// SafeNumber returns *v, or def when v is nil or not finite.
func SafeNumber(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return def
	}
	return *v
}

// ParseFloat coerces a raw vendor value to a float64. Strings, numbers and
// json.Number are accepted; nil, malformed strings and non-finite values
// all coerce to zero. It never panics and never returns NaN.
func ParseFloat(v any) float64 {
	f := ParseNullableFloat(v)
	if f == nil {
		return 0
	}
	return *f
}

// ParseNullableFloat is ParseFloat for fields where absence is semantically
// distinct from zero: it returns nil instead of 0 when the value is
// missing or unparseable. Used for quality and targeting diagnostics,
// where a score of zero is a real (bad) score and nil means "not scored
// yet".
func ParseNullableFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
