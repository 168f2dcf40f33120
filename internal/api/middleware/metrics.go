package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opsboard/opsboard/internal/metrics"
)

// metricsSkipPaths lists operational endpoints excluded from request
// metrics. Probe and scrape traffic would dominate the histograms
// without telling anyone anything.
var metricsSkipPaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
	"/readyz":  {},
}

// healthGauges maps probe paths to their 0/1 gauges.
var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records request duration and
// status. Probe paths update up/down gauges instead.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			if _, skip := metricsSkipPaths[path]; skip {
				err := next(c)
				updateHealthGauge(path, c.Response().Status)
				return err
			}

			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			metrics.HTTPRequestDuration.
				WithLabelValues(method, path, status).
				Observe(duration)
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, path, status).
				Inc()

			return err
		}
	}
}

func updateHealthGauge(path string, status int) {
	gauge, ok := healthGauges[path]
	if !ok {
		return
	}

	if status >= 200 && status < 300 {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}
