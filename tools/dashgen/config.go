package main

import "errors"

// KnownMetrics is the set of metric names exported by opsboard plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"opsboard_http_request_duration_seconds": true,
	"opsboard_http_requests_total":           true,

	// Health metrics.
	"opsboard_healthz_up": true,
	"opsboard_readyz_up":  true,

	// Row fetch metrics.
	"opsboard_fetch_pages_total":  true,
	"opsboard_fetch_rows_total":   true,
	"opsboard_fetch_errors_total": true,

	// Aggregation and snapshot metrics.
	"opsboard_aggregation_duration_seconds": true,
	"opsboard_snapshot_rows":                true,
	"opsboard_snapshot_refresh_total":       true,

	// Recording rules.
	"opsboard:http_requests:rate5m":    true,
	"opsboard:http_errors:rate5m":      true,
	"opsboard:fetch_rows:rate5m":       true,
	"opsboard:fetch_errors:rate5m":     true,
	"opsboard:refresh_failures:rate1h": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
