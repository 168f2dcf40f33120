// Package kpi provides pure derived-metric calculators over raw rows
// or finalized aggregates: ratio-of-sums, percentages, and distinct
// entity counts. Every division is guarded; a zero denominator yields
// nil, never Inf and never an error.
package kpi

import "fmt"

// Ratio returns num ÷ den, or nil when den is zero.
func Ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}

// Percent returns num ÷ den as a percentage, or nil when den is zero.
func Percent(num, den float64) *float64 {
	r := Ratio(num, den)
	if r == nil {
		return nil
	}
	v := *r * 100
	return &v
}

// SumRatio accumulates numerator and denominator independently across
// the same row set and returns their ratio. Rows contribute to each
// side only when that side's extractor yields a value, so a malformed
// numerator on one row does not lose that row's denominator.
func SumRatio[R any](rows []R, num, den func(R) *float64) *float64 {
	var numSum, denSum float64
	for _, row := range rows {
		if v := num(row); v != nil {
			numSum += *v
		}
		if v := den(row); v != nil {
			denSum += *v
		}
	}
	return Ratio(numSum, denSum)
}

// Margin returns the recomputed gross margin percentage,
// (revenue − cost) ÷ revenue, or nil when revenue is zero.
func Margin(revenue, cost float64) *float64 {
	return Percent(revenue-cost, revenue)
}

// DistinctCount counts distinct identifier values via set insertion.
// Rows with an empty identifier get a positional fallback key so they
// count as individual entities rather than collapsing into one.
func DistinctCount[R any](rows []R, id func(R) string) int {
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		k := id(row)
		if k == "" {
			k = fmt.Sprintf("row-%d", i)
		}
		seen[k] = struct{}{}
	}
	return len(seen)
}
