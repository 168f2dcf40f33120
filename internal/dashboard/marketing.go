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

// MktRow is the marketing dashboard's record schema.
type MktRow struct {
	CampaignID string
	Campaign   string
	Channel    string
	Region     string
	LeadID     string

	Spend       *float64
	Revenue     *float64
	Conversions *float64

	StartedAt *time.Time
}

func marketingQuery() source.Query {
	return source.Query{
		Table: "campaign_results",
		Columns: []string{
			"campaign_id", "campaign", "channel", "region", "lead_id",
			"spend", "revenue", "conversions", "started_at",
		},
	}
}

// MktFromSource converts one loosely typed source row.
func MktFromSource(r source.Row) MktRow {
	return MktRow{
		CampaignID:  field.Key(r["campaign_id"]),
		Campaign:    field.String(r["campaign"]),
		Channel:     field.String(r["channel"]),
		Region:      field.String(r["region"]),
		LeadID:      field.Key(r["lead_id"]),
		Spend:       field.Float(r["spend"]),
		Revenue:     field.Float(r["revenue"]),
		Conversions: field.Float(r["conversions"]),
		StartedAt:   field.Date(r["started_at"]),
	}
}

// MarketingCascade returns the fixed filter order: channel, then
// region.
func MarketingCascade() *options.Cascade[MktRow] {
	return options.New(
		options.Level[MktRow]{Name: "channel", Value: func(r MktRow) string { return r.Channel }},
		options.Level[MktRow]{Name: "region", Value: func(r MktRow) string { return r.Region }},
	)
}

// CampaignGroup is one finalized per-campaign aggregate.
type CampaignGroup struct {
	CampaignID string `json:"campaign_id"`
	Campaign   string `json:"campaign"`
	Channel    string `json:"channel"`

	SpendTotal      float64 `json:"spend_total"`
	RevenueTotal    float64 `json:"revenue_total"`
	ConversionTotal float64 `json:"conversion_total"`
	Leads           int     `json:"leads"`

	StartedAt *time.Time `json:"started_at"`
}

// MarketingKPIs are the corpus-level campaign metrics.
type MarketingKPIs struct {
	Campaigns     int      `json:"campaigns"`
	Leads         int      `json:"leads"`
	ROAS          *float64 `json:"roas"`
	CostPerLead   *float64 `json:"cost_per_lead"`
	ConversionPct *float64 `json:"conversion_pct"`
}

// MarketingReport is the chart-ready output of one marketing pass.
type MarketingReport struct {
	Selection options.Selection   `json:"selection"`
	Options   map[string][]string `json:"options"`
	Groups    []CampaignGroup     `json:"groups"`
	KPIs      MarketingKPIs       `json:"kpis"`
	Spend     Series              `json:"spend_series"`
	NoData    bool                `json:"no_data"`
}

type mktAcc struct {
	campaign string
	channel  string

	spend       aggregate.Sum
	revenue     aggregate.Sum
	conversions aggregate.Sum
	leads       aggregate.Distinct

	first *time.Time
}

// BuildMarketing runs the full marketing pass over typed rows.
func BuildMarketing(rows []MktRow, sel options.Selection, p Params) *MarketingReport {
	cascade := MarketingCascade()
	sel = cascade.Normalize(rows, sel)

	report := &MarketingReport{
		Selection: sel,
		Options: map[string][]string{
			"channel": cascade.Options(rows, sel, "channel"),
			"region":  cascade.Options(rows, sel, "region"),
		},
	}

	filtered := cascade.Filter(rows, sel)

	type indexedRow struct {
		row MktRow
		idx int
	}
	indexed := make([]indexedRow, len(filtered))
	for i, r := range filtered {
		indexed[i] = indexedRow{row: r, idx: i}
	}

	groups, order := aggregate.Group(
		indexed,
		func(ir indexedRow) string { return ir.row.CampaignID },
		func() *mktAcc { return &mktAcc{} },
		func(a *mktAcc, ir indexedRow) {
			r := ir.row
			if a.campaign == "" {
				a.campaign = r.Campaign
			}
			if a.channel == "" {
				a.channel = r.Channel
			}
			a.spend.Observe(r.Spend)
			a.revenue.Observe(r.Revenue)
			a.conversions.Observe(r.Conversions)

			leadKey := r.LeadID
			if leadKey == "" {
				leadKey = syntheticKey(ir.idx)
			}
			a.leads.Observe(leadKey)

			if r.StartedAt != nil && (a.first == nil || r.StartedAt.Before(*a.first)) {
				a.first = r.StartedAt
			}
		},
	)

	finalized := make([]CampaignGroup, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		finalized = append(finalized, CampaignGroup{
			CampaignID:      key,
			Campaign:        acc.campaign,
			Channel:         acc.channel,
			SpendTotal:      acc.spend.Value(),
			RevenueTotal:    acc.revenue.Value(),
			ConversionTotal: acc.conversions.Value(),
			Leads:           acc.leads.Count(),
			StartedAt:       acc.first,
		})
	}

	finalized = aggregate.FilterHorizon(
		finalized,
		func(g CampaignGroup) *time.Time { return g.StartedAt },
		p.HorizonYear,
	)
	aggregate.SortChrono(finalized, func(g CampaignGroup) *time.Time { return g.StartedAt })

	report.Groups = finalized
	if len(finalized) == 0 {
		report.NoData = true
		return report
	}

	report.KPIs = marketingKPIs(filtered, finalized)
	report.Spend = spendSeries(finalized)
	return report
}

func marketingKPIs(rows []MktRow, groups []CampaignGroup) MarketingKPIs {
	k := MarketingKPIs{Campaigns: len(groups)}

	var spend, revenue, conversions float64
	for _, g := range groups {
		spend += g.SpendTotal
		revenue += g.RevenueTotal
		conversions += g.ConversionTotal
	}

	// Leads across the corpus are counted once per distinct lead id,
	// never by summing per-campaign counts (a lead touched by two
	// campaigns counts once here).
	k.Leads = kpi.DistinctCount(rows, func(r MktRow) string { return r.LeadID })

	k.ROAS = kpi.Ratio(revenue, spend)
	k.CostPerLead = kpi.Ratio(spend, float64(k.Leads))
	k.ConversionPct = kpi.Percent(conversions, float64(k.Leads))

	return k
}

func spendSeries(groups []CampaignGroup) Series {
	s := Series{Name: "spend"}
	for _, g := range groups {
		v := g.SpendTotal
		label := g.Campaign
		if label == "" {
			label = g.CampaignID
		}
		s.Labels = append(s.Labels, label)
		s.Values = append(s.Values, &v)
	}
	return s
}

// Marketing loads (or reuses) the campaign row buffer and aggregates
// it under the given selection.
func (s *Service) Marketing(
	ctx context.Context,
	sel options.Selection,
) (*MarketingReport, error) {
	raw, err := s.rows(ctx, Marketing)
	if err != nil {
		return nil, err
	}

	rows := make([]MktRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, MktFromSource(r))
	}

	timer := observeAggregation(Marketing)
	defer timer.ObserveDuration()

	return BuildMarketing(rows, sel, s.params), nil
}
