// Package engine schedules periodic snapshot refreshes so dashboard
// reports stay close to the source without refetching on every
// request.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/metrics"
)

// Refresher reloads every dashboard's row buffer on a fixed interval.
// Dashboards are refreshed one at a time with a stagger offset between
// them so the source never sees four bulk fetches at once.
type Refresher struct {
	svc     *dashboard.Service
	cron    *cron.Cron
	log     *slog.Logger
	stagger time.Duration
	timeout time.Duration
}

// NewRefresher creates a Refresher running on the given interval.
func NewRefresher(
	svc *dashboard.Service,
	interval time.Duration,
	stagger time.Duration,
	log *slog.Logger,
) (*Refresher, error) {
	c := cron.New()

	r := &Refresher{
		svc:     svc,
		cron:    c,
		log:     log,
		stagger: stagger,
		timeout: 5 * time.Minute,
	}

	if _, err := c.AddFunc("@every "+interval.String(), r.runAll); err != nil {
		return nil, err
	}

	return r, nil
}

// Start begins running scheduled refreshes.
func (r *Refresher) Start() {
	r.log.Info("refresher started")
	r.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running refresh
// cycle to finish.
func (r *Refresher) Stop() context.Context {
	r.log.Info("refresher stopping")
	return r.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (r *Refresher) Entries() []cron.Entry {
	return r.cron.Entries()
}

func (r *Refresher) runAll() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.RunAll(ctx)
}

// RunAll refreshes every dashboard once, in declaration order. One
// dashboard failing does not stop the others; its stale buffer keeps
// serving until the next cycle.
func (r *Refresher) RunAll(ctx context.Context) {
	runID := uuid.NewString()
	r.log.Info("refresh cycle starting", "run_id", runID)

	for i, name := range dashboard.Names() {
		if i > 0 && r.stagger > 0 {
			select {
			case <-time.After(r.stagger):
			case <-ctx.Done():
				r.log.Warn("refresh cycle canceled", "run_id", runID)
				return
			}
		}

		start := time.Now()
		if err := r.svc.Refresh(ctx, name); err != nil {
			metrics.SnapshotRefreshTotal.WithLabelValues(name, "error").Inc()
			r.log.Error("refresh failed",
				"run_id", runID,
				"dashboard", name,
				"error", err,
			)
			continue
		}

		metrics.SnapshotRefreshTotal.WithLabelValues(name, "success").Inc()
		r.log.Info("refresh complete",
			"run_id", runID,
			"dashboard", name,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
