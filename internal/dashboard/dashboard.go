// Package dashboard assembles the four analytics dashboards from the
// shared aggregation core: procurement, CRM, marketing, and the
// integrated supply network view. Each dashboard declares an explicit
// nullable row schema, converts loosely typed source rows through the
// field helpers, and recomputes every aggregate from scratch whenever
// its row set or filter selection changes.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opsboard/opsboard/internal/metrics"
	"github.com/opsboard/opsboard/internal/source"
	"github.com/opsboard/opsboard/pkg/risk"
)

// Dashboard names.
const (
	Procurement = "procurement"
	CRM         = "crm"
	Marketing   = "marketing"
	Network     = "network"
)

// Names lists every dashboard the service can serve.
func Names() []string {
	return []string{Procurement, CRM, Marketing, Network}
}

// Series is a chart-ready pair of label and value arrays. Values are
// nullable so count-gated means survive the trip to the chart layer
// without turning into zeros.
type Series struct {
	Name   string     `json:"name"`
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"`
}

// MonthPoint is one calendar-month bucket of a rolled-up series.
type MonthPoint struct {
	Start       time.Time `json:"start"`
	CostTotal   float64   `json:"cost_total"`
	LeadTimeAvg *float64  `json:"lead_time_avg"`
	Groups      int       `json:"groups"`
}

// Params carries the policy constants shared by every builder.
type Params struct {
	HorizonYear int
	Thresholds  risk.Thresholds
}

type snapshot struct {
	rows      []source.Row
	fetchedAt time.Time
}

// Service owns the per-dashboard row buffers and recomputes reports on
// demand. Rows are fetched once per dashboard and reused until a
// refresh replaces the buffer wholesale; there is no incremental
// update of aggregates.
type Service struct {
	fetcher *source.Fetcher
	params  Params

	mu    sync.RWMutex
	cache map[string]snapshot
}

// NewService creates a dashboard service over the given fetcher.
func NewService(f *source.Fetcher, params Params) *Service {
	return &Service{
		fetcher: f,
		params:  params,
		cache:   make(map[string]snapshot),
	}
}

// query returns the table/projection behind a dashboard.
func query(name string) (source.Query, error) {
	switch name {
	case Procurement:
		return procurementQuery(), nil
	case CRM:
		return crmQuery(), nil
	case Marketing:
		return marketingQuery(), nil
	case Network:
		return networkQuery(), nil
	default:
		return source.Query{}, fmt.Errorf("unknown dashboard %q", name)
	}
}

// Refresh refetches a dashboard's row buffer from the source,
// replacing the previous snapshot only on success. A fetch failure
// leaves the old buffer in place and propagates as the terminal load
// error.
func (s *Service) Refresh(ctx context.Context, name string) error {
	q, err := query(name)
	if err != nil {
		return err
	}

	result, err := s.fetcher.FetchAll(ctx, q)
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = snapshot{rows: result.Rows, fetchedAt: time.Now()}
	s.mu.Unlock()

	metrics.SnapshotRows.WithLabelValues(name).Set(float64(len(result.Rows)))
	return nil
}

// FetchedAt reports when a dashboard's buffer was last loaded.
func (s *Service) FetchedAt(name string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.cache[name]
	return snap.fetchedAt, ok
}

// rows returns the cached buffer for a dashboard, fetching it on first
// use.
func (s *Service) rows(ctx context.Context, name string) ([]source.Row, error) {
	s.mu.RLock()
	snap, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return snap.rows, nil
	}

	if err := s.Refresh(ctx, name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[name].rows, nil
}

// syntheticKey is the positional fallback for rows whose member column
// is null, so distinct counts do not collapse unrelated rows.
func syntheticKey(i int) string {
	return fmt.Sprintf("row-%d", i)
}

func observeAggregation(name string) *prometheus.Timer {
	return prometheus.NewTimer(metrics.AggregationDuration.WithLabelValues(name))
}
