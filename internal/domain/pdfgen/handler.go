package pdfgen

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Handler struct {
	builder *Builder
	logger  zerolog.Logger
}

func NewHandler(builder *Builder, logger zerolog.Logger) *Handler {
	return &Handler{
		builder: builder,
		logger:  logger.With().Str("component", "pdfgen").Logger(),
	}
}

// RegisterRoutes wires the render endpoint. The renderer sits on the
// internal network and the callers authenticate their own users, so this
// surface carries no token check.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/generate/report", h.GenerateReport)
}

func (h *Handler) GenerateReport(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Report.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Report content is required")
	}

	pdf, err := h.builder.Build(req)
	if err != nil {
		h.logger.Error().Err(err).Msg("pdf render failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "PDF generation failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=report.pdf`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
