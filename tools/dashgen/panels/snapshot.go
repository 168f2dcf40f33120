package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SnapshotRows returns a timeseries panel showing buffered rows per dashboard.
func SnapshotRows() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Snapshot Rows").
		Description("Rows held by each in-memory dashboard snapshot").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`opsboard_snapshot_rows{job="opsboard"}`,
			"{{dashboard}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("last", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RefreshOutcomes returns a timeseries panel showing refresh runs per hour
// split by outcome.
func RefreshOutcomes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Refresh Outcomes").
		Description("Snapshot refresh runs per hour, by dashboard and outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(increase(opsboard_snapshot_refresh_total{job="opsboard"}[1h])) by (dashboard, outcome)`,
			"{{dashboard}} {{outcome}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("last")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// AggregationDuration returns a timeseries panel showing the p95 aggregation
// pass duration per dashboard.
func AggregationDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Aggregation Duration (p95)").
		Description("95th percentile dashboard aggregation pass duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(opsboard_aggregation_duration_seconds_bucket{job="opsboard"}[5m])) by (le, dashboard))`,
			"{{dashboard}}",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
