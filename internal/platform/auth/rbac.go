package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route group on an exact role match. It composes after
// Authenticate, so the check never runs against an unverified token. There
// is no role hierarchy: admin does not imply user.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := CurrentIdentity(c.Request().Context())
			if ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			if ident.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
