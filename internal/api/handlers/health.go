package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/opsboard/internal/dashboard"
)

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	svc *dashboard.Service
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(svc *dashboard.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz returns 200 once at least one dashboard snapshot has loaded,
// 503 before that. A server that has never reached the row source has
// nothing to serve.
func (h *HealthHandler) Readyz(c echo.Context) error {
	for _, name := range dashboard.Names() {
		if _, ok := h.svc.FetchedAt(name); ok {
			return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
		}
	}
	return c.JSON(
		http.StatusServiceUnavailable,
		map[string]string{"status": "unavailable"},
	)
}
