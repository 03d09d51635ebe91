package identity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/pkg/pagination"
)

var userListBounds = pagination.Bounds{Default: 50, Max: 200}

type Handler struct {
	svc    *Service
	signer *auth.Signer
}

func NewHandler(svc *Service, signer *auth.Signer) *Handler {
	return &Handler{svc: svc, signer: signer}
}

// RegisterRoutes wires the public login endpoints and the authenticated
// dashboard and user-administration surfaces.
func (h *Handler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	e.POST("/api/auth/login", h.UserLogin)
	e.POST("/api/auth/admin/login", h.AdminLogin)

	dash := e.Group("", authn)
	dash.GET("/api/dashboard/me", h.Me, auth.RequireRole(auth.RoleUser))
	dash.GET("/api/admin/dashboard/me", h.Me, auth.RequireRole(auth.RoleAdmin))

	users := e.Group("/api/users", authn, auth.RequireRole(auth.RoleAdmin))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeactivateUser)
	users.DELETE("/:id/permanent", h.DeleteUserPermanent)
}

func (h *Handler) UserLogin(c echo.Context) error {
	return h.login(c, auth.RoleUser)
}

func (h *Handler) AdminLogin(c echo.Context) error {
	return h.login(c, auth.RoleAdmin)
}

func (h *Handler) login(c echo.Context, role string) error {
	var body LoginRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if body.Username == "" || body.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	user, err := h.svc.Authenticate(c.Request().Context(), body.Username, body.Password, role)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}

	token, err := h.signer.Issue(user.Username, user.ID, user.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		Username:    user.Username,
		FullName:    user.FullName,
	})
}

// Me returns the resolved identity of the caller. With directory-backed
// resolution this reflects the live user row, not the token snapshot.
func (h *Handler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.CurrentIdentity(c.Request().Context()))
}

func (h *Handler) ListUsers(c echo.Context) error {
	p, err := pagination.FromContext(c, userListBounds)
	if err != nil {
		return err
	}
	users, total, err := h.svc.ListUsers(c.Request().Context(), p.Search, p.Limit, p.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(users, total))
}

func (h *Handler) CreateUser(c echo.Context) error {
	var input CreateUserInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	user, err := h.svc.CreateUser(c.Request().Context(), input)
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var input UpdateUserInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	actor := auth.CurrentIdentity(c.Request().Context())
	user, err := h.svc.UpdateUser(c.Request().Context(), actor.ID, id, input)
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) DeactivateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	actor := auth.CurrentIdentity(c.Request().Context())
	if err := h.svc.DeactivateUser(c.Request().Context(), actor.ID, id); err != nil {
		return mapUserError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteUserPermanent(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	actor := auth.CurrentIdentity(c.Request().Context())
	if err := h.svc.DeleteUserPermanent(c.Request().Context(), actor.ID, id); err != nil {
		return mapUserError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func userID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}
	return id, nil
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	case errors.Is(err, ErrSelfDeactivation):
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot deactivate your own account")
	case errors.Is(err, ErrSelfDelete):
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot delete your own account")
	case errors.Is(err, ErrInvalidRole):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	default:
		return err
	}
}
