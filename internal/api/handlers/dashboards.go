package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/options"
)

// DashboardHandler serves the aggregated dashboard reports.
type DashboardHandler struct {
	svc *dashboard.Service
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// --- Input/Output types ---

// ListDashboardsOutput lists the available dashboards.
type ListDashboardsOutput struct {
	Body struct {
		Dashboards []string `json:"dashboards"`
	}
}

// ProcurementInput carries the procurement filter selection. Omitted
// levels default to the "All" sentinel; invalid picks reset themselves
// and every level below.
type ProcurementInput struct {
	Customer string `query:"customer" doc:"Customer filter (All when omitted)"`
	Part     string `query:"part"     doc:"Part filter (All when omitted)"`
	Supplier string `query:"supplier" doc:"Supplier filter (All when omitted)"`
}

// ProcurementOutput is the procurement report response.
type ProcurementOutput struct {
	Body dashboard.ProcurementReport
}

// CRMInput carries the CRM filter selection.
type CRMInput struct {
	Industry string `query:"industry" doc:"Industry filter (All when omitted)"`
	Channel  string `query:"channel"  doc:"Channel filter (All when omitted)"`
	Region   string `query:"region"   doc:"Region filter (All when omitted)"`
}

// CRMOutput is the CRM report response.
type CRMOutput struct {
	Body dashboard.CRMReport
}

// MarketingInput carries the marketing filter selection.
type MarketingInput struct {
	Channel string `query:"channel" doc:"Channel filter (All when omitted)"`
	Region  string `query:"region"  doc:"Region filter (All when omitted)"`
}

// MarketingOutput is the marketing report response.
type MarketingOutput struct {
	Body dashboard.MarketingReport
}

// NetworkInput carries the supply network filter selection.
type NetworkInput struct {
	Supplier string `query:"supplier" doc:"Supplier filter (All when omitted)"`
	Part     string `query:"part"     doc:"Part filter (All when omitted)"`
}

// NetworkOutput is the network report response.
type NetworkOutput struct {
	Body dashboard.NetworkReport
}

// RefreshInput names the dashboard whose row buffer to reload.
type RefreshInput struct {
	Name string `path:"name" doc:"Dashboard name" enum:"procurement,crm,marketing,network"`
}

// RefreshOutput reports the refresh result.
type RefreshOutput struct {
	Body struct {
		Dashboard string    `json:"dashboard"`
		FetchedAt time.Time `json:"fetched_at"`
	}
}

// selection builds a Selection from query values, skipping empties so
// omitted levels stay at the All sentinel.
func selection(pairs map[string]string) options.Selection {
	sel := options.Selection{}
	for level, value := range pairs {
		if value != "" {
			sel[level] = value
		}
	}
	return sel
}

// --- Handlers ---

// ListDashboards returns the dashboard names the service can serve.
func (*DashboardHandler) ListDashboards(
	_ context.Context,
	_ *struct{},
) (*ListDashboardsOutput, error) {
	resp := &ListDashboardsOutput{}
	resp.Body.Dashboards = dashboard.Names()
	return resp, nil
}

// Procurement returns the procurement report under the given selection.
func (h *DashboardHandler) Procurement(
	ctx context.Context,
	input *ProcurementInput,
) (*ProcurementOutput, error) {
	report, err := h.svc.Procurement(ctx, selection(map[string]string{
		"customer": input.Customer,
		"part":     input.Part,
		"supplier": input.Supplier,
	}))
	if err != nil {
		return nil, huma.Error502BadGateway("loading procurement rows: " + err.Error())
	}
	return &ProcurementOutput{Body: *report}, nil
}

// CRM returns the CRM report under the given selection.
func (h *DashboardHandler) CRM(
	ctx context.Context,
	input *CRMInput,
) (*CRMOutput, error) {
	report, err := h.svc.CRM(ctx, selection(map[string]string{
		"industry": input.Industry,
		"channel":  input.Channel,
		"region":   input.Region,
	}))
	if err != nil {
		return nil, huma.Error502BadGateway("loading crm rows: " + err.Error())
	}
	return &CRMOutput{Body: *report}, nil
}

// Marketing returns the marketing report under the given selection.
func (h *DashboardHandler) Marketing(
	ctx context.Context,
	input *MarketingInput,
) (*MarketingOutput, error) {
	report, err := h.svc.Marketing(ctx, selection(map[string]string{
		"channel": input.Channel,
		"region":  input.Region,
	}))
	if err != nil {
		return nil, huma.Error502BadGateway("loading marketing rows: " + err.Error())
	}
	return &MarketingOutput{Body: *report}, nil
}

// Network returns the supply network report under the given selection.
func (h *DashboardHandler) Network(
	ctx context.Context,
	input *NetworkInput,
) (*NetworkOutput, error) {
	report, err := h.svc.Network(ctx, selection(map[string]string{
		"supplier": input.Supplier,
		"part":     input.Part,
	}))
	if err != nil {
		return nil, huma.Error502BadGateway("loading network rows: " + err.Error())
	}
	return &NetworkOutput{Body: *report}, nil
}

// Refresh reloads a dashboard's row buffer from the source.
func (h *DashboardHandler) Refresh(
	ctx context.Context,
	input *RefreshInput,
) (*RefreshOutput, error) {
	if err := h.svc.Refresh(ctx, input.Name); err != nil {
		return nil, huma.Error502BadGateway("refreshing " + input.Name + ": " + err.Error())
	}

	resp := &RefreshOutput{}
	resp.Body.Dashboard = input.Name
	if at, ok := h.svc.FetchedAt(input.Name); ok {
		resp.Body.FetchedAt = at
	}
	return resp, nil
}

// RegisterDashboardRoutes registers dashboard endpoints with the Huma API.
func RegisterDashboardRoutes(api huma.API, h *DashboardHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-dashboards",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboards",
		Summary:     "List dashboards",
		Description: "Returns the names of the dashboards the service can serve.",
		Tags:        []string{"dashboards"},
	}, h.ListDashboards)

	huma.Register(api, huma.Operation{
		OperationID: "get-procurement",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboards/procurement",
		Summary:     "Procurement report",
		Description: "Returns per-PO aggregates, KPIs, and filter options under the given selection.",
		Tags:        []string{"dashboards"},
	}, h.Procurement)

	huma.Register(api, huma.Operation{
		OperationID: "get-crm",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboards/crm",
		Summary:     "CRM report",
		Description: "Returns per-customer aggregates, KPIs, and filter options under the given selection.",
		Tags:        []string{"dashboards"},
	}, h.CRM)

	huma.Register(api, huma.Operation{
		OperationID: "get-marketing",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboards/marketing",
		Summary:     "Marketing report",
		Description: "Returns per-campaign aggregates, KPIs, and filter options under the given selection.",
		Tags:        []string{"dashboards"},
	}, h.Marketing)

	huma.Register(api, huma.Operation{
		OperationID: "get-network",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboards/network",
		Summary:     "Supply network report",
		Description: "Returns geographic node aggregates and the monthly rollup under the given selection.",
		Tags:        []string{"dashboards"},
	}, h.Network)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-dashboard",
		Method:      http.MethodPost,
		Path:        "/api/v1/dashboards/{name}/refresh",
		Summary:     "Refresh a dashboard",
		Description: "Reloads the dashboard's row buffer from the source, replacing it only on success.",
		Tags:        []string{"dashboards"},
		Errors:      []int{http.StatusBadGateway},
	}, h.Refresh)
}
