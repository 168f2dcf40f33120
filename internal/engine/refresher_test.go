package engine_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/engine"
	"github.com/opsboard/opsboard/internal/source"
	"github.com/opsboard/opsboard/pkg/risk"
)

// recordingSource notes which tables were fetched and can fail some.
type recordingSource struct {
	tables  []string
	failFor map[string]bool
}

func (s *recordingSource) FetchRange(_ context.Context, q source.Query, offset, _ int) ([]source.Row, error) {
	if s.failFor[q.Table] {
		return nil, errors.New("fetch failed")
	}
	if offset == 0 {
		s.tables = append(s.tables, q.Table)
		return []source.Row{{"id": "r1"}}, nil
	}
	return nil, nil
}

func newRefresher(t *testing.T, src source.RowSource) (*engine.Refresher, *dashboard.Service) {
	t.Helper()

	svc := dashboard.NewService(
		source.NewFetcher(src),
		dashboard.Params{HorizonYear: 2025, Thresholds: risk.DefaultThresholds()},
	)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r, err := engine.NewRefresher(svc, time.Hour, 0, log)
	require.NoError(t, err)
	return r, svc
}

func TestRunAllRefreshesEveryDashboard(t *testing.T) {
	t.Parallel()

	src := &recordingSource{}
	r, svc := newRefresher(t, src)

	r.RunAll(context.Background())

	assert.ElementsMatch(t, []string{
		"supply_orders", "crm_pipeline", "campaign_results", "network_flows",
	}, src.tables)

	for _, name := range dashboard.Names() {
		_, ok := svc.FetchedAt(name)
		assert.True(t, ok, name)
	}
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	t.Parallel()

	src := &recordingSource{failFor: map[string]bool{"crm_pipeline": true}}
	r, svc := newRefresher(t, src)

	r.RunAll(context.Background())

	_, ok := svc.FetchedAt(dashboard.CRM)
	assert.False(t, ok)
	_, ok = svc.FetchedAt(dashboard.Marketing)
	assert.True(t, ok)
}

func TestSchedulerRegistersEntry(t *testing.T) {
	t.Parallel()

	r, _ := newRefresher(t, &recordingSource{})
	assert.Len(t, r.Entries(), 1)

	r.Start()
	<-r.Stop().Done()
}
