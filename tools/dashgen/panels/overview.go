package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// HealthzStat returns a stat panel showing liveness probe state.
func HealthzStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Liveness").
		Description("1 when the last /healthz probe succeeded").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`opsboard_healthz_up`, "healthz", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorMode(common.BigValueColorModeBackground)
}

// ReadyzStat returns a stat panel showing readiness probe state.
func ReadyzStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Readiness").
		Description("1 when at least one dashboard snapshot is loaded").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`opsboard_readyz_up`, "readyz", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorMode(common.BigValueColorModeBackground)
}

// UptimeStat returns a stat panel showing process uptime.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since process start").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - process_start_time_seconds{job="opsboard"}`, "uptime", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorMode(common.BigValueColorModeValue)
}

// SnapshotRowsStat returns a stat panel showing total buffered rows.
func SnapshotRowsStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Buffered Rows").
		Description("Rows held across all dashboard snapshots").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`sum(opsboard_snapshot_rows)`, "rows", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorMode(common.BigValueColorModeValue)
}
