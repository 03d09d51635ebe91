package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/pkg/pagination"
)

var patientListBounds = pagination.Bounds{Default: 50, Max: 500}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the staff-facing CRUD surface and the internal
// projection surface. The internal group sits behind the pre-shared key, not
// bearer auth.
func (h *Handler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc, internalKey string) {
	api := e.Group("/api/patients", authn)
	api.GET("", h.List)
	api.POST("", h.Create)
	api.GET("/:id", h.Get)
	api.PUT("/:id", h.Update)
	api.DELETE("/:id", h.Deactivate)

	internal := e.Group("/internal/patients", auth.RequireInternalKey(internalKey))
	internal.GET("/:id", h.GetRef)
	internal.POST("/batch", h.BatchRefs)
}

func (h *Handler) List(c echo.Context) error {
	p, err := pagination.FromContext(c, patientListBounds)
	if err != nil {
		return err
	}

	filter := ListFilter{Search: p.Search}
	if raw := c.QueryParam("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid is_active parameter")
		}
		filter.IsActive = &active
	}

	patients, total, err := h.svc.List(c.Request().Context(), filter, p.Limit, p.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(patients, total))
}

func (h *Handler) Create(c echo.Context) error {
	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	actor := auth.CurrentIdentity(c.Request().Context())
	p, err := h.svc.Create(c.Request().Context(), input, actor.ID)
	if err != nil {
		return mapPatientError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapPatientError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	p, err := h.svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return mapPatientError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Deactivate(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return mapPatientError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetRef serves the single-patient internal projection.
func (h *Handler) GetRef(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapPatientError(err)
	}
	return c.JSON(http.StatusOK, p.Ref())
}

type batchRequest struct {
	IDs []int `json:"ids"`
}

// BatchRefs resolves many ids at once. Unknown ids are silently omitted so a
// caller rendering a list never fails on one stale reference.
func (h *Handler) BatchRefs(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	refs, err := h.svc.Refs(c.Request().Context(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refs)
}

func patientID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid patient id")
	}
	return id, nil
}

func mapPatientError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrDuplicateMRN):
		return echo.NewHTTPError(http.StatusConflict, "A patient with this medical record number already exists")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid patient data")
	default:
		return err
	}
}
