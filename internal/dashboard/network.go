package dashboard

import (
	"context"
	"time"

	"github.com/opsboard/opsboard/internal/aggregate"
	"github.com/opsboard/opsboard/internal/geo"
	"github.com/opsboard/opsboard/internal/options"
	"github.com/opsboard/opsboard/internal/source"
	"github.com/opsboard/opsboard/pkg/field"
)

// NetworkRow is the integrated supply network dashboard's record
// schema. One row can carry up to three location-bearing sub-entities.
type NetworkRow struct {
	Supplier string
	Part     string

	CustomerLocation string
	SupplierLocation string
	PlantLocation    string
	Region           string

	Cost         *float64
	LeadTimeDays *float64
	DefectPieces *float64
	OEE          *float64
	RiskScore    *float64

	ShippedAt *time.Time
}

func networkQuery() source.Query {
	return source.Query{
		Table: "network_flows",
		Columns: []string{
			"supplier", "part",
			"customer_location", "supplier_location", "plant_location", "region",
			"cost", "lead_time_days", "defect_pieces", "oee", "risk_score",
			"shipped_at",
		},
	}
}

// NetworkFromSource converts one loosely typed source row.
func NetworkFromSource(r source.Row) NetworkRow {
	return NetworkRow{
		Supplier:         field.String(r["supplier"]),
		Part:             field.String(r["part"]),
		CustomerLocation: field.String(r["customer_location"]),
		SupplierLocation: field.String(r["supplier_location"]),
		PlantLocation:    field.String(r["plant_location"]),
		Region:           field.String(r["region"]),
		Cost:             field.Float(r["cost"]),
		LeadTimeDays:     field.Float(r["lead_time_days"]),
		DefectPieces:     field.Float(r["defect_pieces"]),
		OEE:              field.Float(r["oee"]),
		RiskScore:        field.Float(r["risk_score"]),
		ShippedAt:        field.Date(r["shipped_at"]),
	}
}

// NetworkCascade returns the fixed filter order: supplier, then part.
func NetworkCascade() *options.Cascade[NetworkRow] {
	return options.New(
		options.Level[NetworkRow]{Name: "supplier", Value: func(r NetworkRow) string { return r.Supplier }},
		options.Level[NetworkRow]{Name: "part", Value: func(r NetworkRow) string { return r.Part }},
	)
}

// NetworkReport is the map- and chart-ready output of one network
// aggregation pass.
type NetworkReport struct {
	Selection options.Selection   `json:"selection"`
	Options   map[string][]string `json:"options"`
	Nodes     []geo.Node          `json:"nodes"`
	Monthly   []MonthPoint        `json:"monthly,omitempty"`
	NoData    bool                `json:"no_data"`
}

// BuildNetwork runs the geo bucketing pass. Each row feeds one
// observation per role whose location field is present; a row with all
// three locations contributes to all three roles' accumulators.
func BuildNetwork(rows []NetworkRow, sel options.Selection, p Params, resolver geo.Resolver) *NetworkReport {
	cascade := NetworkCascade()
	sel = cascade.Normalize(rows, sel)

	report := &NetworkReport{
		Selection: sel,
		Options: map[string][]string{
			"supplier": cascade.Options(rows, sel, "supplier"),
			"part":     cascade.Options(rows, sel, "part"),
		},
	}

	filtered := cascade.Filter(rows, sel)

	// Future-dated flows fall outside the data horizon entirely.
	filtered = aggregate.FilterHorizon(
		filtered,
		func(r NetworkRow) *time.Time { return r.ShippedAt },
		p.HorizonYear,
	)

	bucketer := geo.NewBucketer(resolver)
	for _, r := range filtered {
		for _, rl := range []struct {
			role geo.Role
			loc  string
		}{
			{geo.RoleCustomer, r.CustomerLocation},
			{geo.RoleSupplier, r.SupplierLocation},
			{geo.RolePlant, r.PlantLocation},
		} {
			if rl.loc == "" {
				continue
			}
			bucketer.Observe(geo.Observation{
				Role:         rl.role,
				Location:     rl.loc,
				Region:       r.Region,
				Cost:         r.Cost,
				LeadTimeDays: r.LeadTimeDays,
				DefectPieces: r.DefectPieces,
				OEE:          r.OEE,
				RiskScore:    r.RiskScore,
			})
		}
	}

	report.Nodes = bucketer.Nodes()
	if len(report.Nodes) == 0 {
		report.NoData = true
	}

	// Series size stays bounded: the monthly rollup only exists at the
	// broadest selection.
	if cascade.Broadest(sel) {
		report.Monthly = networkMonthly(filtered)
	}

	return report
}

func networkMonthly(rows []NetworkRow) []MonthPoint {
	buckets := aggregate.MonthBuckets(rows, func(r NetworkRow) *time.Time { return r.ShippedAt })

	points := make([]MonthPoint, 0, len(buckets))
	for _, b := range buckets {
		var cost aggregate.Sum
		var lead aggregate.Mean
		for _, r := range b.Entries {
			cost.Observe(r.Cost)
			lead.Observe(r.LeadTimeDays)
		}
		points = append(points, MonthPoint{
			Start:       b.Start,
			CostTotal:   cost.Value(),
			LeadTimeAvg: lead.Value(),
			Groups:      len(b.Entries),
		})
	}
	return points
}

// Network loads (or reuses) the network row buffer and runs the geo
// bucketing pass under the given selection.
func (s *Service) Network(
	ctx context.Context,
	sel options.Selection,
) (*NetworkReport, error) {
	raw, err := s.rows(ctx, Network)
	if err != nil {
		return nil, err
	}

	rows := make([]NetworkRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, NetworkFromSource(r))
	}

	timer := observeAggregation(Network)
	defer timer.ObserveDuration()

	return BuildNetwork(rows, sel, s.params, geo.NewGazetteer()), nil
}
