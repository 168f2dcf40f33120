package dashboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/options"
	"github.com/opsboard/opsboard/internal/source"
	"github.com/opsboard/opsboard/pkg/risk"
)

func f(v float64) *float64 { return &v }

func d(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func testParams() dashboard.Params {
	return dashboard.Params{HorizonYear: 2025, Thresholds: risk.DefaultThresholds()}
}

func poRow(po, customer, part, supplier string) dashboard.PORow {
	return dashboard.PORow{
		PONumber: po,
		Customer: customer,
		Part:     part,
		Supplier: supplier,
	}
}

func TestBuildProcurementGroupsByPO(t *testing.T) {
	t.Parallel()

	rows := []dashboard.PORow{
		{PONumber: "PO-1", Customer: "Acme", Cost: f(100), GoodPieces: f(10), OnTime: f(1), OrderDate: d(2024, 3, 1)},
		{PONumber: "PO-1", Customer: "Acme", Cost: f(50), GoodPieces: f(5), OnTime: f(0), OrderDate: d(2024, 3, 9)},
		{PONumber: "PO-2", Customer: "Acme", Cost: f(30), GoodPieces: f(3), OrderDate: d(2024, 1, 2)},
	}

	report := dashboard.BuildProcurement(rows, options.Selection{}, testParams())
	require.Len(t, report.Groups, 2)

	// chronological by first order date
	assert.Equal(t, "PO-2", report.Groups[0].PONumber)
	assert.Equal(t, "PO-1", report.Groups[1].PONumber)

	g := report.Groups[1]
	assert.Equal(t, 150.0, g.CostTotal)
	assert.Equal(t, 15.0, g.GoodTotal)
	require.NotNil(t, g.OnTimeRate)
	assert.InDelta(t, 50.0, *g.OnTimeRate, 1e-9)
	assert.Equal(t, d(2024, 3, 1), g.FirstOrder)
	assert.Equal(t, d(2024, 3, 9), g.LastOrder)
}

func TestBuildProcurementNullSafeMeans(t *testing.T) {
	t.Parallel()

	// Null measures never pull an average toward zero.
	rows := []dashboard.PORow{
		{PONumber: "PO-1", LeadTimeDays: f(10)},
		{PONumber: "PO-1", LeadTimeDays: nil},
		{PONumber: "PO-1", LeadTimeDays: f(20)},
	}

	report := dashboard.BuildProcurement(rows, options.Selection{}, testParams())
	require.Len(t, report.Groups, 1)
	require.NotNil(t, report.Groups[0].LeadTimeAvg)
	assert.InDelta(t, 15.0, *report.Groups[0].LeadTimeAvg, 1e-9)
}

func TestBuildProcurementSyntheticKeys(t *testing.T) {
	t.Parallel()

	// Rows missing the group key each become their own group rather
	// than merging into one null bucket.
	rows := []dashboard.PORow{
		{PONumber: "", Cost: f(1)},
		{PONumber: "", Cost: f(2)},
		{PONumber: "PO-1", Cost: f(3)},
	}

	report := dashboard.BuildProcurement(rows, options.Selection{}, testParams())
	assert.Len(t, report.Groups, 3)
	assert.Equal(t, 3, report.KPIs.POCount)
}

func TestBuildProcurementHorizon(t *testing.T) {
	t.Parallel()

	rows := []dashboard.PORow{
		{PONumber: "PO-1", OrderDate: d(2025, 12, 31)},
		{PONumber: "PO-2", OrderDate: d(2026, 1, 15)},
		{PONumber: "PO-3"}, // undated rows are retained
	}

	report := dashboard.BuildProcurement(rows, options.Selection{}, testParams())
	require.Len(t, report.Groups, 2)
	assert.Equal(t, "PO-1", report.Groups[0].PONumber)
	assert.Equal(t, "PO-3", report.Groups[1].PONumber)
}

func TestBuildProcurementCascadeReset(t *testing.T) {
	t.Parallel()

	rows := []dashboard.PORow{
		poRow("PO-1", "Acme", "Gear", "Bolt Co"),
		poRow("PO-2", "Acme", "Shaft", "Forge Ltd"),
		poRow("PO-3", "Globex", "Gear", "Bolt Co"),
	}

	// supplier selection is only valid under Globex's rows; switching
	// customer to Acme keeps it, switching to a customer without that
	// supplier resets it.
	sel := options.Selection{"customer": "Acme", "part": "Shaft", "supplier": "Forge Ltd"}
	report := dashboard.BuildProcurement(rows, sel, testParams())
	assert.Equal(t, "Forge Ltd", report.Selection.Get("supplier"))
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "PO-2", report.Groups[0].PONumber)

	sel = options.Selection{"customer": "Globex", "part": "Shaft", "supplier": "Forge Ltd"}
	report = dashboard.BuildProcurement(rows, sel, testParams())
	assert.Equal(t, options.All, report.Selection.Get("part"))
	assert.Equal(t, options.All, report.Selection.Get("supplier"))
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "PO-3", report.Groups[0].PONumber)
}

func TestBuildProcurementOptionsRestricted(t *testing.T) {
	t.Parallel()

	rows := []dashboard.PORow{
		poRow("PO-1", "Acme", "Gear", "Bolt Co"),
		poRow("PO-2", "Globex", "Shaft", "Forge Ltd"),
	}

	sel := options.Selection{"customer": "Acme"}
	report := dashboard.BuildProcurement(rows, sel, testParams())

	// lower levels only offer values reachable under the upper pick
	assert.Equal(t, []string{"Gear"}, report.Options["part"])
	assert.Equal(t, []string{"Bolt Co"}, report.Options["supplier"])
	// the selected level itself still offers everything
	assert.Equal(t, []string{"Acme", "Globex"}, report.Options["customer"])
}

func TestBuildProcurementRiskGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows []dashboard.PORow
		want string
	}{
		{
			name: "two groups is below the sample gate",
			rows: []dashboard.PORow{
				{PONumber: "PO-1", RiskScore: f(9)},
				{PONumber: "PO-2", RiskScore: f(9)},
			},
			want: risk.NeedMoreData,
		},
		{
			name: "three unscored groups stay gated",
			rows: []dashboard.PORow{
				{PONumber: "PO-1"}, {PONumber: "PO-2"}, {PONumber: "PO-3"},
			},
			want: risk.NeedMoreData,
		},
		{
			name: "majority high-risk classifies critical",
			rows: []dashboard.PORow{
				{PONumber: "PO-1", RiskScore: f(7.2)},
				{PONumber: "PO-2", RiskScore: f(7.4)},
				{PONumber: "PO-3", RiskScore: f(1.0)},
			},
			want: risk.LevelCritical,
		},
		{
			name: "low scores classify low",
			rows: []dashboard.PORow{
				{PONumber: "PO-1", RiskScore: f(1)},
				{PONumber: "PO-2", RiskScore: f(2)},
				{PONumber: "PO-3", RiskScore: f(3)},
			},
			want: risk.LevelLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report := dashboard.BuildProcurement(tt.rows, options.Selection{}, testParams())
			assert.Equal(t, tt.want, report.KPIs.DeliveryRisk)
		})
	}
}

func TestBuildProcurementKPIRatios(t *testing.T) {
	t.Parallel()

	rows := []dashboard.PORow{
		{PONumber: "PO-1", Cost: f(100), GoodPieces: f(20), DefectPieces: f(5)},
		{PONumber: "PO-2", Cost: f(50), GoodPieces: f(30), DefectPieces: f(0)},
	}

	report := dashboard.BuildProcurement(rows, options.Selection{}, testParams())
	require.NotNil(t, report.KPIs.CostPerGoodUnit)
	assert.InDelta(t, 3.0, *report.KPIs.CostPerGoodUnit, 1e-9)
	require.NotNil(t, report.KPIs.DefectRatePct)
	assert.InDelta(t, 100*5.0/55.0, *report.KPIs.DefectRatePct, 1e-9)
}

func TestBuildProcurementZeroDenominator(t *testing.T) {
	t.Parallel()

	rows := []dashboard.PORow{
		{PONumber: "PO-1", Cost: f(100)},
	}

	report := dashboard.BuildProcurement(rows, options.Selection{}, testParams())
	assert.Nil(t, report.KPIs.CostPerGoodUnit)
	assert.Nil(t, report.KPIs.DefectRatePct)
}

func TestBuildProcurementEmpty(t *testing.T) {
	t.Parallel()

	report := dashboard.BuildProcurement(nil, options.Selection{}, testParams())
	assert.True(t, report.NoData)
	assert.Equal(t, risk.NeedMoreData, report.KPIs.DeliveryRisk)
	assert.Empty(t, report.Groups)
}

func TestBuildProcurementMonthlyOnlyWhenBroadest(t *testing.T) {
	t.Parallel()

	rows := []dashboard.PORow{
		{PONumber: "PO-1", Customer: "Acme", Cost: f(10), OrderDate: d(2024, 1, 5)},
		{PONumber: "PO-2", Customer: "Acme", Cost: f(20), OrderDate: d(2024, 1, 20)},
		{PONumber: "PO-3", Customer: "Globex", Cost: f(30), OrderDate: d(2024, 3, 2)},
	}

	broad := dashboard.BuildProcurement(rows, options.Selection{}, testParams())
	require.Len(t, broad.Monthly, 2)
	assert.InDelta(t, 30.0, broad.Monthly[0].CostTotal, 1e-9)
	assert.Equal(t, 2, broad.Monthly[0].Groups)

	narrow := dashboard.BuildProcurement(rows, options.Selection{"customer": "Acme"}, testParams())
	assert.Empty(t, narrow.Monthly)
}

func TestPOFromSource(t *testing.T) {
	t.Parallel()

	row := source.Row{
		"po_number":    float64(1042),
		"customer":     " Acme ",
		"cost":         "1,250.50",
		"good_pieces":  float64(12),
		"lead_time":    nil,
		"on_time":      true,
		"risk_score":   "not-a-number",
		"risk_level":   "High",
		"order_date":   "2024-06-01",
		"defect_pieces": nil,
	}

	po := dashboard.POFromSource(row)
	assert.Equal(t, "1042", po.PONumber)
	assert.Equal(t, "Acme", po.Customer)
	require.NotNil(t, po.Cost)
	assert.InDelta(t, 1250.50, *po.Cost, 1e-9)
	require.NotNil(t, po.OnTime)
	assert.Equal(t, 1.0, *po.OnTime)
	assert.Nil(t, po.RiskScore)
	assert.Equal(t, "High", po.RiskLevel)
	require.NotNil(t, po.OrderDate)
	assert.Equal(t, 2024, po.OrderDate.Year())
	assert.Nil(t, po.DefectPieces)
}
