// Package field provides total coercion helpers for loosely typed row
// values coming from the hosted data source. Values arrive as nil,
// native numerics, numeric strings, booleans, or date strings; every
// helper returns an optional result instead of a sentinel so callers
// never have to test for NaN.
package field

import (
	"strconv"
	"strings"
	"time"
)

// Float coerces v to a float64. It accepts native numeric types and
// numeric strings (with surrounding whitespace and thousands commas
// tolerated). Returns nil when v is absent or not numeric.
func Float(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int32:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
		return nil
	case bool:
		f := 0.0
		if n {
			f = 1.0
		}
		return &f
	default:
		return nil
	}
}

// Int coerces v to an int via Float, truncating any fraction.
func Int(v any) *int {
	f := Float(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// String returns the trimmed string form of v, or empty string when v
// is nil or not a string. Numeric values are not stringified; an
// identifier column that arrives numeric should go through Key instead.
func String(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Key returns a grouping key for v: trimmed strings pass through,
// numerics are formatted, everything else yields empty string (caller
// substitutes a synthetic fallback key).
func Key(v any) string {
	switch k := v.(type) {
	case string:
		return strings.TrimSpace(k)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	default:
		return ""
	}
}

// Norm returns the canonical comparison form of a categorical value:
// trimmed and lowercased. Filtering and option deduplication both go
// through Norm so "Acme " and "acme" collapse to one value.
func Norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dateLayouts are tried in order. The hosted source emits ISO dates,
// sometimes with a time component.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// Date parses a date-bearing value. Returns nil when v is absent or no
// layout matches.
func Date(v any) *time.Time {
	switch d := v.(type) {
	case time.Time:
		return &d
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}

// Year extracts the calendar year from a date-bearing value, or nil when
// the value has no parseable date.
func Year(v any) *int {
	t := Date(v)
	if t == nil {
		return nil
	}
	y := t.Year()
	return &y
}
