package aggregate

import (
	"fmt"
	"sort"
	"time"
)

// Group runs one aggregation pass: each row is routed to the
// accumulator for key(row), creating it lazily via newAcc on first
// sight. Rows whose key extractor returns empty get a synthetic
// per-row key so unrelated null-keyed rows never merge. The returned
// order slice preserves first-seen key order.
func Group[R, A any](
	rows []R,
	key func(R) string,
	newAcc func() *A,
	observe func(*A, R),
) (map[string]*A, []string) {
	groups := make(map[string]*A)
	order := make([]string, 0)

	for i, row := range rows {
		k := key(row)
		if k == "" {
			k = fmt.Sprintf("row-%d", i)
		}

		acc, ok := groups[k]
		if !ok {
			acc = newAcc()
			groups[k] = acc
			order = append(order, k)
		}

		observe(acc, row)
	}

	return groups, order
}

// WithinHorizon reports whether t falls at or before the policy cutoff
// year. A missing date is within the horizon: only a year known to lie
// beyond the cutoff excludes a row.
func WithinHorizon(t *time.Time, horizonYear int) bool {
	if t == nil {
		return true
	}
	return t.Year() <= horizonYear
}

// FilterHorizon drops finalized entries whose date resolves beyond the
// horizon year. Entries without a date survive.
func FilterHorizon[T any](entries []T, when func(T) *time.Time, horizonYear int) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if WithinHorizon(when(e), horizonYear) {
			out = append(out, e)
		}
	}
	return out
}

// SortChrono orders entries by date ascending with a stable sort;
// entries without a parseable date sort last.
func SortChrono[T any](entries []T, when func(T) *time.Time) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := when(entries[i]), when(entries[j])
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.Before(*tj)
		}
	})
}
