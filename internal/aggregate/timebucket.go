package aggregate

import (
	"sort"
	"time"
)

// Bucket holds the entries falling inside one calendar month.
type Bucket[T any] struct {
	Year  int
	Month time.Month
	// Start is the synthesized first-of-month date used for ordering
	// and for labeling the bucketed series.
	Start   time.Time
	Entries []T
}

// MonthBuckets rolls entries up into calendar-month buckets keyed by
// (year, month) of when(entry). Entries without a parseable date are
// excluded from the bucketed series entirely. Buckets come back sorted
// chronologically ascending.
func MonthBuckets[T any](entries []T, when func(T) *time.Time) []Bucket[T] {
	type monthKey struct {
		year  int
		month time.Month
	}

	byMonth := make(map[monthKey][]T)
	for _, e := range entries {
		t := when(e)
		if t == nil {
			continue
		}
		k := monthKey{year: t.Year(), month: t.Month()}
		byMonth[k] = append(byMonth[k], e)
	}

	buckets := make([]Bucket[T], 0, len(byMonth))
	for k, members := range byMonth {
		buckets = append(buckets, Bucket[T]{
			Year:    k.year,
			Month:   k.month,
			Start:   time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC),
			Entries: members,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})

	return buckets
}
