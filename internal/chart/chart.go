// Package chart renders dashboard reports as self-contained ECharts
// HTML, for the render CLI command and ad-hoc sharing. Nullable series
// values pass through as nulls so gated means show as gaps, not zeros.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/geo"
)

const chartHeight = "420px"

func globalOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "100%",
			Height: chartHeight,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// Bar renders a labeled series as a bar chart.
func Bar(title string, s dashboard.Series) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(title, "")...)
	bar.SetXAxis(s.Labels)

	data := make([]opts.BarData, 0, len(s.Values))
	for _, v := range s.Values {
		if v == nil {
			data = append(data, opts.BarData{Value: nil})
			continue
		}
		data = append(data, opts.BarData{Value: *v})
	}
	bar.AddSeries(s.Name, data)
	return bar
}

// MonthlyLine renders the calendar-month rollup as a two-series line
// chart: cost totals and the null-gapped lead time average.
func MonthlyLine(title string, points []dashboard.MonthPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(title, "by calendar month")...)

	labels := make([]string, 0, len(points))
	cost := make([]opts.LineData, 0, len(points))
	lead := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Start.Format("2006-01"))
		cost = append(cost, opts.LineData{Value: p.CostTotal})
		if p.LeadTimeAvg == nil {
			lead = append(lead, opts.LineData{Value: nil})
		} else {
			lead = append(lead, opts.LineData{Value: *p.LeadTimeAvg})
		}
	}

	line.SetXAxis(labels)
	line.AddSeries("cost", cost)
	line.AddSeries("lead time (days)", lead)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// NetworkScatter renders geo nodes as a lon/lat scatter, one series
// per role so customers, suppliers, and plants stay distinguishable.
func NetworkScatter(title string, nodes []geo.Node) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(globalOptions(title, "longitude vs latitude")...)

	byRole := map[geo.Role][]opts.ScatterData{}
	for _, n := range nodes {
		byRole[n.Role] = append(byRole[n.Role], opts.ScatterData{
			Name:  fmt.Sprintf("%s (%s)", n.Location, n.RiskBucket),
			Value: []float64{n.Coordinate.Lon, n.Coordinate.Lat},
		})
	}
	for _, role := range []geo.Role{geo.RoleCustomer, geo.RoleSupplier, geo.RolePlant} {
		if data, ok := byRole[role]; ok {
			scatter.AddSeries(string(role), data)
		}
	}
	return scatter
}

// WritePage renders the given charts into one HTML page.
func WritePage(w io.Writer, title string, renderables ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(renderables...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering %s: %w", title, err)
	}
	return nil
}
