package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// FetchRowRate returns a timeseries panel showing rows fetched per minute.
func FetchRowRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Rows / min").
		Description("Rate of source rows fetched per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`opsboard:fetch_rows:rate5m * 60`, "rows/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// FetchErrors returns a timeseries panel showing fetch errors per minute.
func FetchErrors() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Errors / min").
		Description("Rate of source fetch errors per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`opsboard:fetch_errors:rate5m * 60`, "errors/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// FetchPages returns a timeseries panel showing pages fetched per minute.
func FetchPages() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pages / min").
		Description("Rate of source pages fetched per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(opsboard_fetch_pages_total{job="opsboard"}[5m])) * 60`,
			"pages/min", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
