package report

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/pdfclient"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/registry"
	"github.com/siesta94/aioc-hospital-microservices/pkg/pagination"
)

var reportListBounds = pagination.Bounds{Default: 50, Max: 100}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	g := e.Group("/api/patients/:patient_id/reports", authn)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:report_id", h.Get)
	g.PATCH("/:report_id", h.Update)
	g.DELETE("/:report_id", h.Delete)
	g.GET("/:report_id/pdf", h.PDF)
}

func (h *Handler) List(c echo.Context) error {
	patientID, err := paramInt(c, "patient_id")
	if err != nil {
		return err
	}
	p, err := pagination.FromContext(c, reportListBounds)
	if err != nil {
		return err
	}
	reports, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, p.Limit, p.Skip)
	if err != nil {
		return mapReportError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(reports, total))
}

func (h *Handler) Create(c echo.Context) error {
	patientID, err := paramInt(c, "patient_id")
	if err != nil {
		return err
	}
	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	actor := auth.CurrentIdentity(c.Request().Context())
	r, err := h.svc.Create(c.Request().Context(), patientID, input, actor.ID)
	if err != nil {
		return mapReportError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	patientID, reportID, err := reportPath(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Get(c.Request().Context(), patientID, reportID)
	if err != nil {
		return mapReportError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Update(c echo.Context) error {
	patientID, reportID, err := reportPath(c)
	if err != nil {
		return err
	}
	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	r, err := h.svc.Update(c.Request().Context(), patientID, reportID, input)
	if err != nil {
		return mapReportError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Delete(c echo.Context) error {
	patientID, reportID, err := reportPath(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), patientID, reportID); err != nil {
		return mapReportError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PDF streams the rendered report as an attachment.
func (h *Handler) PDF(c echo.Context) error {
	patientID, reportID, err := reportPath(c)
	if err != nil {
		return err
	}
	pdf, err := h.svc.RenderPDF(c.Request().Context(), patientID, reportID)
	if err != nil {
		return mapReportError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="report-%d.pdf"`, reportID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func reportPath(c echo.Context) (patientID, reportID int, err error) {
	if patientID, err = paramInt(c, "patient_id"); err != nil {
		return 0, 0, err
	}
	if reportID, err = paramInt(c, "report_id"); err != nil {
		return 0, 0, err
	}
	return patientID, reportID, nil
}

func paramInt(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return v, nil
}

func mapReportError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Report not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid report data")
	case errors.Is(err, pdfclient.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "PDF service unavailable")
	case errors.Is(err, registry.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Patient registry unavailable")
	default:
		return err
	}
}
