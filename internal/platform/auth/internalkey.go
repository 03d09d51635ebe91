package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// InternalKeyHeader carries the pre-shared key on service-to-service calls.
const InternalKeyHeader = "X-Internal-Key"

// RequireInternalKey gates the /internal/* surface on a static pre-shared
// key: a bare shared secret with no rotation, scoping, or request signing.
// An empty key leaves the internal surface open; the serving process logs a
// warning at startup when that is the case.
func RequireInternalKey(key string) echo.MiddlewareFunc {
	key = strings.TrimSpace(key)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			got := c.Request().Header.Get(InternalKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing internal key")
			}
			return next(c)
		}
	}
}
