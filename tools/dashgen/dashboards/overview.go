// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/opsboard/opsboard/tools/dashgen/panels"
)

// BuildOverview constructs the Opsboard Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Opsboard Overview").
		Uid("opsboard-overview").
		Tags([]string{"opsboard"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.SnapshotRowsStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Source Fetch.
	b.WithRow(dashboard.NewRowBuilder("Source Fetch").
		WithPanel(panels.FetchRowRate()).
		WithPanel(panels.FetchPages()).
		WithPanel(panels.FetchErrors()))

	// Row 4: Snapshots.
	b.WithRow(dashboard.NewRowBuilder("Snapshots").
		WithPanel(panels.SnapshotRows()).
		WithPanel(panels.RefreshOutcomes()).
		WithPanel(panels.AggregationDuration()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
