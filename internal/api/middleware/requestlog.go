// Package middleware provides Echo middleware for the opsboard API.
package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// RequestLog returns Echo middleware that logs each request with
// structured fields. A request ID is generated when the client did not
// send one and is echoed back in the response header.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			log.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"query", c.Request().URL.RawQuery,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}
