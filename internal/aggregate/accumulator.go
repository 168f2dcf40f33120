// Package aggregate implements the in-memory grouping and aggregation
// core shared by all dashboards: per-measure accumulators, the keyed
// grouping pass, horizon filtering, chronological ordering, and
// calendar-month rollups.
package aggregate

// Sum accumulates an additive measure. Values that failed coercion
// (nil) are skipped without touching the running total, so a bad field
// on one row never zeroes the measure.
type Sum struct {
	total float64
	n     int
}

// Observe adds v to the running total when v is present.
func (s *Sum) Observe(v *float64) {
	if v == nil {
		return
	}
	s.total += *v
	s.n++
}

// Value returns the accumulated total. A sum with no contributions is 0.
func (s *Sum) Value() float64 { return s.total }

// Count returns how many values contributed.
func (s *Sum) Count() int { return s.n }

// Mean accumulates a (sum, count) pair and divides only at read time.
type Mean struct {
	sum float64
	n   int
}

// Observe folds v into the running pair when v is present.
func (m *Mean) Observe(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

// Value returns the arithmetic mean, or nil when no value contributed.
// Never 0, never NaN.
func (m *Mean) Value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// Count returns how many values contributed.
func (m *Mean) Count() int { return m.n }

// Best tracks the highest score seen along with an associated label
// (e.g. a severity level). A candidate replaces the current best only
// when it strictly exceeds it; ties keep the first-seen value, which
// makes the result independent of row order.
type Best struct {
	score *float64
	label string
}

// Observe offers a candidate score with its label.
func (b *Best) Observe(score *float64, label string) {
	if score == nil {
		return
	}
	if b.score != nil && *score <= *b.score {
		return
	}
	v := *score
	b.score = &v
	b.label = label
}

// Score returns the best score seen, or nil when nothing was observed.
func (b *Best) Score() *float64 { return b.score }

// Label returns the label associated with the best score.
func (b *Best) Label() string { return b.label }

// Distinct counts distinct member keys via set insertion. Callers pass
// a positional fallback key for rows whose member column is null so
// null-keyed rows are not undercounted into one bucket.
type Distinct struct {
	members map[string]struct{}
}

// Observe inserts key into the member set. Empty keys are ignored;
// the caller is expected to substitute a fallback key first.
func (d *Distinct) Observe(key string) {
	if key == "" {
		return
	}
	if d.members == nil {
		d.members = make(map[string]struct{})
	}
	d.members[key] = struct{}{}
}

// Count returns the number of distinct members observed.
func (d *Distinct) Count() int { return len(d.members) }
