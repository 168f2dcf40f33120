package dashboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/geo"
	"github.com/opsboard/opsboard/internal/options"
)

func networkReport(rows []dashboard.NetworkRow, sel options.Selection) *dashboard.NetworkReport {
	return dashboard.BuildNetwork(rows, sel, testParams(), geo.NewGazetteer())
}

func TestBuildNetworkRolesPerRow(t *testing.T) {
	t.Parallel()

	// One fully located row yields three nodes, one per role.
	rows := []dashboard.NetworkRow{
		{
			Supplier:         "Bolt Co",
			Part:             "Gear",
			CustomerLocation: "Detroit",
			SupplierLocation: "Shanghai",
			PlantLocation:    "Munich",
			Cost:             f(100),
		},
	}

	report := networkReport(rows, options.Selection{})
	require.Len(t, report.Nodes, 3)

	roles := map[geo.Role]bool{}
	for _, n := range report.Nodes {
		roles[n.Role] = true
		assert.Equal(t, 100.0, n.CostTotal)
		assert.Equal(t, 1, n.Rows)
	}
	assert.True(t, roles[geo.RoleCustomer])
	assert.True(t, roles[geo.RoleSupplier])
	assert.True(t, roles[geo.RolePlant])
}

func TestBuildNetworkUnresolvedExcluded(t *testing.T) {
	t.Parallel()

	rows := []dashboard.NetworkRow{
		{SupplierLocation: "Atlantis Deep Array", Cost: f(50)},
		{SupplierLocation: "Shanghai", Cost: f(75)},
	}

	report := networkReport(rows, options.Selection{})
	require.Len(t, report.Nodes, 1)
	assert.Equal(t, "Shanghai", report.Nodes[0].Location)
	assert.Equal(t, 75.0, report.Nodes[0].CostTotal)
}

func TestBuildNetworkMissingLocationSkipsRole(t *testing.T) {
	t.Parallel()

	rows := []dashboard.NetworkRow{
		{CustomerLocation: "Detroit", Cost: f(10)},
	}

	report := networkReport(rows, options.Selection{})
	require.Len(t, report.Nodes, 1)
	assert.Equal(t, geo.RoleCustomer, report.Nodes[0].Role)
}

func TestBuildNetworkSharedCoordinateOffsets(t *testing.T) {
	t.Parallel()

	// Supplier and plant share Munich, so both get nudged apart; the
	// sole customer role at Detroit keeps the exact gazetteer point.
	rows := []dashboard.NetworkRow{
		{
			CustomerLocation: "Detroit",
			SupplierLocation: "Munich",
			PlantLocation:    "Munich",
		},
	}

	report := networkReport(rows, options.Selection{})
	require.Len(t, report.Nodes, 3)

	coords := map[geo.Role]geo.Coordinate{}
	for _, n := range report.Nodes {
		coords[n.Role] = n.Coordinate
	}
	assert.NotEqual(t, coords[geo.RoleSupplier], coords[geo.RolePlant])

	// deterministic: a second pass lands every node in the same place
	again := networkReport(rows, options.Selection{})
	for _, n := range again.Nodes {
		assert.Equal(t, coords[n.Role], n.Coordinate)
	}
}

func TestBuildNetworkCascadeFiltersObservations(t *testing.T) {
	t.Parallel()

	rows := []dashboard.NetworkRow{
		{Supplier: "Bolt Co", Part: "Gear", SupplierLocation: "Shanghai", Cost: f(10)},
		{Supplier: "Forge Ltd", Part: "Shaft", SupplierLocation: "Munich", Cost: f(20)},
	}

	report := networkReport(rows, options.Selection{"supplier": "Bolt Co"})
	require.Len(t, report.Nodes, 1)
	assert.Equal(t, "Shanghai", report.Nodes[0].Location)

	// part options narrow under the supplier pick
	assert.Equal(t, []string{"Gear"}, report.Options["part"])
}

func TestBuildNetworkRiskBuckets(t *testing.T) {
	t.Parallel()

	rows := []dashboard.NetworkRow{
		{SupplierLocation: "Shanghai", RiskScore: f(8.0)},
		{SupplierLocation: "Shanghai", RiskScore: f(8.5)},
		{SupplierLocation: "Munich", RiskScore: f(1.0)},
	}

	report := networkReport(rows, options.Selection{})
	require.Len(t, report.Nodes, 2)

	buckets := map[string]string{}
	for _, n := range report.Nodes {
		buckets[n.Location] = n.RiskBucket
	}
	assert.Equal(t, "severe", buckets["Shanghai"])
	assert.Equal(t, "stable", buckets["Munich"])
}

func TestBuildNetworkMonthlyOnlyWhenBroadest(t *testing.T) {
	t.Parallel()

	rows := []dashboard.NetworkRow{
		{Supplier: "Bolt Co", SupplierLocation: "Shanghai", Cost: f(10), LeadTimeDays: f(5), ShippedAt: d(2024, 2, 1)},
		{Supplier: "Bolt Co", SupplierLocation: "Shanghai", Cost: f(20), LeadTimeDays: f(7), ShippedAt: d(2024, 2, 20)},
		{Supplier: "Forge Ltd", SupplierLocation: "Munich", Cost: f(40), ShippedAt: d(2024, 4, 3)},
	}

	broad := networkReport(rows, options.Selection{})
	require.Len(t, broad.Monthly, 2)
	assert.InDelta(t, 30.0, broad.Monthly[0].CostTotal, 1e-9)
	require.NotNil(t, broad.Monthly[0].LeadTimeAvg)
	assert.InDelta(t, 6.0, *broad.Monthly[0].LeadTimeAvg, 1e-9)

	narrow := networkReport(rows, options.Selection{"supplier": "Bolt Co"})
	assert.Empty(t, narrow.Monthly)
}

func TestBuildNetworkHorizon(t *testing.T) {
	t.Parallel()

	rows := []dashboard.NetworkRow{
		{SupplierLocation: "Shanghai", Cost: f(10), ShippedAt: d(2026, 2, 1)},
	}

	report := networkReport(rows, options.Selection{})
	assert.True(t, report.NoData)
	assert.Empty(t, report.Nodes)
}
