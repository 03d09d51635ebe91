// Package pagination implements the skip/limit/search query contract shared
// by every list endpoint. Bounds vary per endpoint, so callers declare them
// with Bounds rather than relying on one global maximum.
package pagination

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Bounds declares an endpoint's default and maximum page size.
type Bounds struct {
	Default int
	Max     int
}

// Params holds the parsed query parameters of a list request.
type Params struct {
	Skip   int
	Limit  int
	Search string
}

// FromContext parses skip, limit, and search from the request. Out-of-range
// values are a 400; silently clamping would hide caller bugs.
func FromContext(c echo.Context, b Bounds) (Params, error) {
	p := Params{Skip: 0, Limit: b.Default, Search: c.QueryParam("search")}

	if raw := c.QueryParam("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return Params{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid skip parameter")
		}
		p.Skip = skip
	}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > b.Max {
			return Params{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		p.Limit = limit
	}

	return p, nil
}

// ListResponse is the uniform list envelope.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

func NewListResponse(items interface{}, total int) ListResponse {
	return ListResponse{Items: items, Total: total}
}
