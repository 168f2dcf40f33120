package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/api/middleware"
	"github.com/opsboard/opsboard/pkg/logger"
)

func TestRequestLogGeneratesID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "text")

	e := echo.New()
	e.Use(middleware.RequestLog(log))
	e.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), "path=/ping")
	assert.Contains(t, buf.String(), "request_id=")
}

func TestRequestLogPropagatesID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "text")

	e := echo.New()
	e.Use(middleware.RequestLog(log))
	e.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), "request_id=abc-123")
}

func TestRecoveryReturns500(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "text")

	e := echo.New()
	e.Use(middleware.Recovery(log))
	e.GET("/boom", func(echo.Context) error {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestMetricsDoesNotBreakHandlers(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Use(middleware.Metrics())
	e.GET("/api/v1/dashboards", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboards", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
