package dashboard

import (
	"context"
	"time"

	"github.com/opsboard/opsboard/internal/aggregate"
	"github.com/opsboard/opsboard/internal/kpi"
	"github.com/opsboard/opsboard/internal/options"
	"github.com/opsboard/opsboard/internal/source"
	"github.com/opsboard/opsboard/pkg/field"
)

// CRMRow is the CRM dashboard's record schema.
type CRMRow struct {
	CustomerID string
	Customer   string
	LeadID     string
	Industry   string
	Channel    string
	Region     string

	Revenue   *float64
	Cost      *float64
	CLV       *float64
	CAC       *float64
	Converted *float64

	OpportunityID string
	CreatedAt     *time.Time
}

func crmQuery() source.Query {
	return source.Query{
		Table: "crm_pipeline",
		Columns: []string{
			"customer_id", "customer", "lead_id", "industry", "channel", "region",
			"revenue", "cost", "clv", "cac", "converted",
			"opportunity_id", "created_at",
		},
	}
}

// CRMFromSource converts one loosely typed source row.
func CRMFromSource(r source.Row) CRMRow {
	return CRMRow{
		CustomerID:    field.Key(r["customer_id"]),
		Customer:      field.String(r["customer"]),
		LeadID:        field.Key(r["lead_id"]),
		Industry:      field.String(r["industry"]),
		Channel:       field.String(r["channel"]),
		Region:        field.String(r["region"]),
		Revenue:       field.Float(r["revenue"]),
		Cost:          field.Float(r["cost"]),
		CLV:           field.Float(r["clv"]),
		CAC:           field.Float(r["cac"]),
		Converted:     field.Float(r["converted"]),
		OpportunityID: field.Key(r["opportunity_id"]),
		CreatedAt:     field.Date(r["created_at"]),
	}
}

// CRMCascade returns the fixed filter order: industry, then channel,
// then region.
func CRMCascade() *options.Cascade[CRMRow] {
	return options.New(
		options.Level[CRMRow]{Name: "industry", Value: func(r CRMRow) string { return r.Industry }},
		options.Level[CRMRow]{Name: "channel", Value: func(r CRMRow) string { return r.Channel }},
		options.Level[CRMRow]{Name: "region", Value: func(r CRMRow) string { return r.Region }},
	)
}

// CustomerGroup is one finalized per-customer aggregate.
type CustomerGroup struct {
	CustomerID string `json:"customer_id"`
	Customer   string `json:"customer"`

	RevenueTotal  float64 `json:"revenue_total"`
	CostTotal     float64 `json:"cost_total"`
	CLVTotal      float64 `json:"clv_total"`
	CACTotal      float64 `json:"cac_total"`
	Opportunities int     `json:"opportunities"`

	FirstTouch *time.Time `json:"first_touch"`
}

// CRMKPIs are the corpus-level CRM metrics.
//
// CLVtoCAC is the ratio of corpus-wide sums (total CLV over total
// CAC), not the mean of per-customer ratios; the two disagree and this
// implementation commits to the sums form.
type CRMKPIs struct {
	Leads          int      `json:"leads"`
	Customers      int      `json:"customers"`
	Opportunities  int      `json:"opportunities"`
	CLVtoCAC       *float64 `json:"clv_to_cac"`
	ConversionPct  *float64 `json:"conversion_pct"`
	GrossMarginPct *float64 `json:"gross_margin_pct"`
}

// CRMReport is the chart-ready output of one CRM aggregation pass.
type CRMReport struct {
	Selection options.Selection   `json:"selection"`
	Options   map[string][]string `json:"options"`
	Groups    []CustomerGroup     `json:"groups"`
	KPIs      CRMKPIs             `json:"kpis"`
	Revenue   Series              `json:"revenue_series"`
	NoData    bool                `json:"no_data"`
}

type crmAcc struct {
	customer string

	revenue aggregate.Sum
	cost    aggregate.Sum
	clv     aggregate.Sum
	cac     aggregate.Sum
	opps    aggregate.Distinct

	first *time.Time
}

// BuildCRM runs the full CRM pass over typed rows.
func BuildCRM(rows []CRMRow, sel options.Selection, p Params) *CRMReport {
	cascade := CRMCascade()
	sel = cascade.Normalize(rows, sel)

	report := &CRMReport{
		Selection: sel,
		Options: map[string][]string{
			"industry": cascade.Options(rows, sel, "industry"),
			"channel":  cascade.Options(rows, sel, "channel"),
			"region":   cascade.Options(rows, sel, "region"),
		},
	}

	filtered := cascade.Filter(rows, sel)

	type indexedRow struct {
		row CRMRow
		idx int
	}
	indexed := make([]indexedRow, len(filtered))
	for i, r := range filtered {
		indexed[i] = indexedRow{row: r, idx: i}
	}

	groups, order := aggregate.Group(
		indexed,
		func(ir indexedRow) string { return ir.row.CustomerID },
		func() *crmAcc { return &crmAcc{} },
		func(a *crmAcc, ir indexedRow) {
			r := ir.row
			if a.customer == "" {
				a.customer = r.Customer
			}
			a.revenue.Observe(r.Revenue)
			a.cost.Observe(r.Cost)
			a.clv.Observe(r.CLV)
			a.cac.Observe(r.CAC)

			oppKey := r.OpportunityID
			if oppKey == "" {
				oppKey = syntheticKey(ir.idx)
			}
			a.opps.Observe(oppKey)

			if r.CreatedAt != nil && (a.first == nil || r.CreatedAt.Before(*a.first)) {
				a.first = r.CreatedAt
			}
		},
	)

	finalized := make([]CustomerGroup, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		finalized = append(finalized, CustomerGroup{
			CustomerID:    key,
			Customer:      acc.customer,
			RevenueTotal:  acc.revenue.Value(),
			CostTotal:     acc.cost.Value(),
			CLVTotal:      acc.clv.Value(),
			CACTotal:      acc.cac.Value(),
			Opportunities: acc.opps.Count(),
			FirstTouch:    acc.first,
		})
	}

	finalized = aggregate.FilterHorizon(
		finalized,
		func(g CustomerGroup) *time.Time { return g.FirstTouch },
		p.HorizonYear,
	)
	aggregate.SortChrono(finalized, func(g CustomerGroup) *time.Time { return g.FirstTouch })

	report.Groups = finalized
	if len(finalized) == 0 {
		report.NoData = true
		return report
	}

	report.KPIs = crmKPIs(filtered, finalized)
	report.Revenue = revenueSeries(finalized)
	return report
}

func crmKPIs(rows []CRMRow, groups []CustomerGroup) CRMKPIs {
	k := CRMKPIs{}

	// Distinct entity counts come from set accumulation over identifier
	// columns, never from summing per-row counts.
	k.Leads = kpi.DistinctCount(rows, func(r CRMRow) string { return r.LeadID })
	k.Customers = kpi.DistinctCount(rows, func(r CRMRow) string { return r.CustomerID })
	for _, g := range groups {
		k.Opportunities += g.Opportunities
	}

	k.CLVtoCAC = kpi.SumRatio(groups,
		func(g CustomerGroup) *float64 { return &g.CLVTotal },
		func(g CustomerGroup) *float64 { return &g.CACTotal },
	)

	var converted, leads float64
	for _, r := range rows {
		if r.Converted != nil {
			converted += *r.Converted
			leads++
		}
	}
	k.ConversionPct = kpi.Percent(converted, leads)

	var revenue, cost float64
	for _, g := range groups {
		revenue += g.RevenueTotal
		cost += g.CostTotal
	}
	// Margin is recomputed from revenue and cost; any precomputed
	// margin column in the source is ignored.
	k.GrossMarginPct = kpi.Margin(revenue, cost)

	return k
}

func revenueSeries(groups []CustomerGroup) Series {
	s := Series{Name: "revenue"}
	for _, g := range groups {
		v := g.RevenueTotal
		label := g.Customer
		if label == "" {
			label = g.CustomerID
		}
		s.Labels = append(s.Labels, label)
		s.Values = append(s.Values, &v)
	}
	return s
}

// CRM loads (or reuses) the CRM row buffer and aggregates it under
// the given selection.
func (s *Service) CRM(ctx context.Context, sel options.Selection) (*CRMReport, error) {
	raw, err := s.rows(ctx, CRM)
	if err != nil {
		return nil, err
	}

	rows := make([]CRMRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, CRMFromSource(r))
	}

	timer := observeAggregation(CRM)
	defer timer.ObserveDuration()

	return BuildCRM(rows, sel, s.params), nil
}
