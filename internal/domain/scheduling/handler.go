package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/registry"
	"github.com/siesta94/aioc-hospital-microservices/pkg/pagination"
)

var (
	doctorListBounds = pagination.Bounds{Default: 100, Max: 200}
	apptListBounds   = pagination.Bounds{Default: 50, Max: 200}
	recentBounds     = pagination.Bounds{Default: 20, Max: 50}
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	doctors := e.Group("/api/doctors", authn)
	doctors.GET("", h.ListDoctors)
	doctors.GET("/me", h.MyDoctor)
	doctors.POST("", h.CreateDoctor, auth.RequireRole(auth.RoleAdmin))
	doctors.GET("/:id", h.GetDoctor)
	doctors.PUT("/:id", h.UpdateDoctor, auth.RequireRole(auth.RoleAdmin))
	doctors.DELETE("/:id", h.DeactivateDoctor, auth.RequireRole(auth.RoleAdmin))

	appts := e.Group("/api/appointments", authn)
	appts.GET("", h.ListAppointments)
	appts.GET("/recent", h.RecentAppointments)
	appts.GET("/calendar", h.Calendar)
	appts.POST("", h.CreateAppointment)
	appts.GET("/:id", h.GetAppointment)
	appts.PUT("/:id", h.UpdateAppointment)
	appts.DELETE("/:id", h.CancelAppointment)
}

// -- Doctors --

func (h *Handler) ListDoctors(c echo.Context) error {
	p, err := pagination.FromContext(c, doctorListBounds)
	if err != nil {
		return err
	}
	var isActive *bool
	if raw := c.QueryParam("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid is_active parameter")
		}
		isActive = &active
	}

	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), isActive, p.Limit, p.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(doctors, total))
}

// MyDoctor returns the caller's doctor profile, or a 200 null when the user
// has none. Admins and non-clinical staff land in the null branch.
func (h *Handler) MyDoctor(c echo.Context) error {
	ident := auth.CurrentIdentity(c.Request().Context())
	d, err := h.svc.MyDoctor(c.Request().Context(), ident.ID)
	if err != nil {
		return err
	}
	if d == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var input CreateDoctorInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	d, err := h.svc.CreateDoctor(c.Request().Context(), input)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := pathID(c, "Invalid doctor id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := pathID(c, "Invalid doctor id")
	if err != nil {
		return err
	}
	var input UpdateDoctorInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), id, input)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeactivateDoctor(c echo.Context) error {
	id, err := pathID(c, "Invalid doctor id")
	if err != nil {
		return err
	}
	if err := h.svc.DeactivateDoctor(c.Request().Context(), id); err != nil {
		return mapSchedulingError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Appointments --

func (h *Handler) ListAppointments(c echo.Context) error {
	p, err := pagination.FromContext(c, apptListBounds)
	if err != nil {
		return err
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	appts, total, err := h.svc.ListAppointments(c.Request().Context(), filter, p.Limit, p.Skip)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(appts, total))
}

func (h *Handler) RecentAppointments(c echo.Context) error {
	p, err := pagination.FromContext(c, recentBounds)
	if err != nil {
		return err
	}
	details, err := h.svc.RecentAppointments(c.Request().Context(), p.Limit)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(details, len(details)))
}

func (h *Handler) Calendar(c echo.Context) error {
	from, err := requiredTime(c, "from")
	if err != nil {
		return err
	}
	to, err := requiredTime(c, "to")
	if err != nil {
		return err
	}

	var doctorID, patientID *int
	if id, err := optionalInt(c, "doctor_id"); err != nil {
		return err
	} else {
		doctorID = id
	}
	if id, err := optionalInt(c, "patient_id"); err != nil {
		return err
	} else {
		patientID = id
	}

	details, err := h.svc.Calendar(c.Request().Context(), from, to, doctorID, patientID)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(details, len(details)))
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var input CreateAppointmentInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	actor := auth.CurrentIdentity(c.Request().Context())
	a, err := h.svc.CreateAppointment(c.Request().Context(), input, actor.ID)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := pathID(c, "Invalid appointment id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := pathID(c, "Invalid appointment id")
	if err != nil {
		return err
	}
	var input UpdateAppointmentInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, input)
	if err != nil {
		return mapSchedulingError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := pathID(c, "Invalid appointment id")
	if err != nil {
		return err
	}
	if err := h.svc.CancelAppointment(c.Request().Context(), id); err != nil {
		return mapSchedulingError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- helpers --

func pathID(c echo.Context, msg string) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return id, nil
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return &v, nil
}

func optionalTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return &t, nil
}

func requiredTime(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" parameter is required")
	}
	t, err := parseTime(raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return t, nil
}

// parseTime accepts RFC 3339 timestamps and bare dates.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func filterFromQuery(c echo.Context) (AppointmentFilter, error) {
	var filter AppointmentFilter
	var err error

	if filter.PatientID, err = optionalInt(c, "patient_id"); err != nil {
		return filter, err
	}
	if filter.DoctorID, err = optionalInt(c, "doctor_id"); err != nil {
		return filter, err
	}
	if filter.From, err = optionalTime(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = optionalTime(c, "to"); err != nil {
		return filter, err
	}
	if raw := c.QueryParam("status"); raw != "" {
		filter.Status = &raw
	}
	return filter, nil
}

func mapSchedulingError(err error) error {
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	case errors.Is(err, ErrDoctorExists):
		return echo.NewHTTPError(http.StatusConflict, "A doctor already exists for this user")
	case errors.Is(err, ErrPastDate):
		return echo.NewHTTPError(http.StatusBadRequest,
			"Appointments cannot be scheduled for past dates. Only today or future dates are allowed.")
	case errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid appointment data")
	case errors.Is(err, registry.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Patient registry unavailable")
	default:
		return err
	}
}
