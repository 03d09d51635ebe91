package db

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is the slice of pgxpool.Pool the health probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns the /health endpoint: a trivial connectivity probe
// against the service's database. Every service exposes the same contract so
// orchestrators can treat them uniformly.
func HealthHandler(pool Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Database unavailable")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
