package dashboard

import (
	"context"
	"time"

	"github.com/opsboard/opsboard/internal/aggregate"
	"github.com/opsboard/opsboard/internal/kpi"
	"github.com/opsboard/opsboard/internal/options"
	"github.com/opsboard/opsboard/internal/source"
	"github.com/opsboard/opsboard/pkg/field"
	"github.com/opsboard/opsboard/pkg/risk"
)

// PORow is the procurement dashboard's record schema. Every measure is
// nullable: the source emits numerics as strings or nulls and no two
// rows are consistent about it.
type PORow struct {
	PONumber string
	Customer string
	Part     string
	Supplier string

	Cost         *float64
	GoodPieces   *float64
	DefectPieces *float64
	LeadTimeDays *float64
	OnTime       *float64
	RiskScore    *float64
	RiskLevel    string

	OrderDate *time.Time
}

func procurementQuery() source.Query {
	return source.Query{
		Table: "supply_orders",
		Columns: []string{
			"po_number", "customer", "part", "supplier",
			"cost", "good_pieces", "defect_pieces", "lead_time_days",
			"on_time", "risk_score", "risk_level", "order_date",
		},
	}
}

// POFromSource converts one loosely typed source row. Fields that fail
// coercion come through nil without affecting their neighbors.
func POFromSource(r source.Row) PORow {
	return PORow{
		PONumber:     field.Key(r["po_number"]),
		Customer:     field.String(r["customer"]),
		Part:         field.String(r["part"]),
		Supplier:     field.String(r["supplier"]),
		Cost:         field.Float(r["cost"]),
		GoodPieces:   field.Float(r["good_pieces"]),
		DefectPieces: field.Float(r["defect_pieces"]),
		LeadTimeDays: field.Float(r["lead_time_days"]),
		OnTime:       field.Float(r["on_time"]),
		RiskScore:    field.Float(r["risk_score"]),
		RiskLevel:    field.String(r["risk_level"]),
		OrderDate:    field.Date(r["order_date"]),
	}
}

// ProcurementCascade returns the fixed filter order for the dashboard:
// customer, then part, then supplier.
func ProcurementCascade() *options.Cascade[PORow] {
	return options.New(
		options.Level[PORow]{Name: "customer", Value: func(r PORow) string { return r.Customer }},
		options.Level[PORow]{Name: "part", Value: func(r PORow) string { return r.Part }},
		options.Level[PORow]{Name: "supplier", Value: func(r PORow) string { return r.Supplier }},
	)
}

// POGroup is one finalized per-PO aggregate.
type POGroup struct {
	PONumber string `json:"po_number"`

	CostTotal   float64  `json:"cost_total"`
	GoodTotal   float64  `json:"good_total"`
	DefectTotal float64  `json:"defect_total"`
	LeadTimeAvg *float64 `json:"lead_time_avg"`
	OnTimeRate  *float64 `json:"on_time_rate"`

	MaxRiskScore *float64 `json:"max_risk_score"`
	RiskLevel    string   `json:"risk_level"`
	Suppliers    int      `json:"suppliers"`

	FirstOrder *time.Time `json:"first_order"`
	LastOrder  *time.Time `json:"last_order"`
}

// ProcurementKPIs are the corpus-level derived metrics over the
// filtered, finalized groups.
type ProcurementKPIs struct {
	POCount         int      `json:"po_count"`
	CostPerGoodUnit *float64 `json:"cost_per_good_unit"`
	DefectRatePct   *float64 `json:"defect_rate_pct"`
	OnTimePct       *float64 `json:"on_time_pct"`
	DeliveryRisk    string   `json:"delivery_risk"`
}

// ProcurementReport is the chart-ready output of one aggregation pass.
type ProcurementReport struct {
	Selection options.Selection   `json:"selection"`
	Options   map[string][]string `json:"options"`
	Groups    []POGroup           `json:"groups"`
	KPIs      ProcurementKPIs     `json:"kpis"`
	Cost      Series              `json:"cost_series"`
	Monthly   []MonthPoint        `json:"monthly,omitempty"`
	NoData    bool                `json:"no_data"`
}

type poAcc struct {
	cost     aggregate.Sum
	good     aggregate.Sum
	defect   aggregate.Sum
	leadTime aggregate.Mean
	onTime   aggregate.Mean
	best     aggregate.Best
	supplier aggregate.Distinct

	first *time.Time
	last  *time.Time
}

func (a *poAcc) observe(r PORow, idx int) {
	a.cost.Observe(r.Cost)
	a.good.Observe(r.GoodPieces)
	a.defect.Observe(r.DefectPieces)
	a.leadTime.Observe(r.LeadTimeDays)
	a.onTime.Observe(r.OnTime)
	a.best.Observe(r.RiskScore, r.RiskLevel)

	supplierKey := field.Norm(r.Supplier)
	if supplierKey == "" {
		supplierKey = syntheticKey(idx)
	}
	a.supplier.Observe(supplierKey)

	if r.OrderDate != nil {
		if a.first == nil || r.OrderDate.Before(*a.first) {
			a.first = r.OrderDate
		}
		if a.last == nil || r.OrderDate.After(*a.last) {
			a.last = r.OrderDate
		}
	}
}

// BuildProcurement runs the full pass: normalize the selection against
// the current row set, filter, group by PO, finalize with the year
// horizon, and derive the KPIs.
func BuildProcurement(rows []PORow, sel options.Selection, p Params) *ProcurementReport {
	cascade := ProcurementCascade()
	sel = cascade.Normalize(rows, sel)

	report := &ProcurementReport{
		Selection: sel,
		Options: map[string][]string{
			"customer": cascade.Options(rows, sel, "customer"),
			"part":     cascade.Options(rows, sel, "part"),
			"supplier": cascade.Options(rows, sel, "supplier"),
		},
	}

	filtered := cascade.Filter(rows, sel)

	type indexedRow struct {
		row PORow
		idx int
	}
	indexed := make([]indexedRow, len(filtered))
	for i, r := range filtered {
		indexed[i] = indexedRow{row: r, idx: i}
	}

	groups, order := aggregate.Group(
		indexed,
		func(ir indexedRow) string { return ir.row.PONumber },
		func() *poAcc { return &poAcc{} },
		func(a *poAcc, ir indexedRow) { a.observe(ir.row, ir.idx) },
	)

	finalized := make([]POGroup, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		g := POGroup{
			PONumber:     key,
			CostTotal:    acc.cost.Value(),
			GoodTotal:    acc.good.Value(),
			DefectTotal:  acc.defect.Value(),
			LeadTimeAvg:  acc.leadTime.Value(),
			MaxRiskScore: acc.best.Score(),
			RiskLevel:    acc.best.Label(),
			Suppliers:    acc.supplier.Count(),
			FirstOrder:   acc.first,
			LastOrder:    acc.last,
		}
		if rate := acc.onTime.Value(); rate != nil {
			pct := *rate * 100
			g.OnTimeRate = &pct
		}
		finalized = append(finalized, g)
	}

	finalized = aggregate.FilterHorizon(
		finalized,
		func(g POGroup) *time.Time { return g.FirstOrder },
		p.HorizonYear,
	)
	aggregate.SortChrono(finalized, func(g POGroup) *time.Time { return g.FirstOrder })

	report.Groups = finalized
	if len(finalized) == 0 {
		report.NoData = true
		report.KPIs.DeliveryRisk = risk.NeedMoreData
		return report
	}

	report.KPIs = procurementKPIs(finalized, p.Thresholds)
	report.Cost = costSeries(finalized)

	if cascade.Broadest(sel) {
		report.Monthly = monthlyRollup(finalized)
	}

	return report
}

func procurementKPIs(groups []POGroup, th risk.Thresholds) ProcurementKPIs {
	k := ProcurementKPIs{POCount: len(groups)}

	k.CostPerGoodUnit = kpi.SumRatio(groups,
		func(g POGroup) *float64 { return &g.CostTotal },
		func(g POGroup) *float64 { return &g.GoodTotal },
	)

	var good, defect float64
	for _, g := range groups {
		good += g.GoodTotal
		defect += g.DefectTotal
	}
	k.DefectRatePct = kpi.Percent(defect, good+defect)

	var onTime aggregate.Mean
	var scores aggregate.Mean
	highRisk := 0
	scored := 0
	for _, g := range groups {
		onTime.Observe(g.OnTimeRate)
		scores.Observe(g.MaxRiskScore)
		if g.MaxRiskScore != nil {
			scored++
			level := risk.Classify(*g.MaxRiskScore, th)
			if level == risk.LevelHigh || level == risk.LevelCritical {
				highRisk++
			}
		}
	}
	k.OnTimePct = onTime.Value()

	highShare := 0.0
	if scored > 0 {
		highShare = float64(highRisk) / float64(scored)
	}
	k.DeliveryRisk = risk.ClassifyDelivery(risk.DeliveryInput{
		Groups:    len(groups),
		HighShare: highShare,
		AvgScore:  scores.Value(),
	}, th)

	return k
}

func costSeries(groups []POGroup) Series {
	s := Series{Name: "cost"}
	for _, g := range groups {
		cost := g.CostTotal
		s.Labels = append(s.Labels, g.PONumber)
		s.Values = append(s.Values, &cost)
	}
	return s
}

// monthlyRollup re-buckets the finalized groups into calendar months,
// re-deriving each bucket's totals and count-gated means.
func monthlyRollup(groups []POGroup) []MonthPoint {
	buckets := aggregate.MonthBuckets(groups, func(g POGroup) *time.Time { return g.FirstOrder })

	points := make([]MonthPoint, 0, len(buckets))
	for _, b := range buckets {
		var cost aggregate.Sum
		var lead aggregate.Mean
		for _, g := range b.Entries {
			c := g.CostTotal
			cost.Observe(&c)
			lead.Observe(g.LeadTimeAvg)
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

// Procurement loads (or reuses) the dashboard's row buffer and runs
// one aggregation pass under the given selection.
func (s *Service) Procurement(
	ctx context.Context,
	sel options.Selection,
) (*ProcurementReport, error) {
	raw, err := s.rows(ctx, Procurement)
	if err != nil {
		return nil, err
	}

	rows := make([]PORow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, POFromSource(r))
	}

	timer := observeAggregation(Procurement)
	defer timer.ObserveDuration()

	return BuildProcurement(rows, sel, s.params), nil
}
