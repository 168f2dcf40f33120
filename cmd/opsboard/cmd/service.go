package cmd

import (
	"context"
	"fmt"

	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/source"
	"github.com/opsboard/opsboard/pkg/logger"
	"github.com/opsboard/opsboard/pkg/risk"
)

// buildService wires a dashboard service from config: row source,
// fetcher, and aggregation policy. The returned cleanup releases the
// source's resources.
func buildService(ctx context.Context, cfg *config.Config) (*dashboard.Service, func(), error) {
	var (
		src     source.RowSource
		cleanup = func() {}
	)

	switch cfg.Source.Backend {
	case "rest":
		src = source.NewRESTClient(cfg.Source.Endpoint, cfg.Source.APIKey)
	case "postgres":
		pg, err := source.NewPostgresSource(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		src = pg
		cleanup = pg.Close
	default:
		return nil, nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}

	fetcher := source.NewFetcher(src,
		source.WithPageSize(cfg.Fetch.PageSize),
		source.WithRowCap(cfg.Fetch.RowCap),
		source.WithFetchLogger(logger.NewCharm(cfg.Logging.Level, cfg.Logging.Format)),
	)

	svc := dashboard.NewService(fetcher, dashboard.Params{
		HorizonYear: cfg.Analysis.HorizonYear,
		Thresholds: risk.Thresholds{
			Critical: cfg.Analysis.Risk.Critical,
			High:     cfg.Analysis.Risk.High,
			Medium:   cfg.Analysis.Risk.Medium,
		},
	})

	return svc, cleanup, nil
}
