package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
)

func testHandler(repo Repository) *Handler {
	svc := NewService(repo, zerolog.Nop())
	svc.verify = func(password, hash string) bool { return password == hash }
	return NewHandler(svc, auth.NewSigner("test-secret", 8*time.Hour))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestUserLogin(t *testing.T) {
	repo := newMockRepo()
	addUser(repo, "alice", "pw", auth.RoleUser, true)
	h := testHandler(repo)
	e := echo.New()

	req := jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pw"}`)
	rec := httptest.NewRecorder()
	if err := h.UserLogin(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "bearer" || resp.Role != auth.RoleUser {
		t.Errorf("unexpected response: %+v", resp)
	}

	claims, err := auth.NewVerifier("test-secret").Verify(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != auth.RoleUser {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestUserLogin_InvalidCredentials(t *testing.T) {
	repo := newMockRepo()
	addUser(repo, "alice", "pw", auth.RoleUser, true)
	h := testHandler(repo)
	e := echo.New()

	for _, body := range []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"nobody","password":"pw"}`,
	} {
		req := jsonRequest(http.MethodPost, "/api/auth/login", body)
		err := h.UserLogin(e.NewContext(req, httptest.NewRecorder()))
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: expected 401, got %v", body, err)
		}
		if he.Message != "Invalid credentials" {
			t.Errorf("expected uniform message, got %v", he.Message)
		}
	}
}

func TestAdminLogin_RejectsUserRole(t *testing.T) {
	repo := newMockRepo()
	addUser(repo, "alice", "pw", auth.RoleUser, true)
	h := testHandler(repo)
	e := echo.New()

	req := jsonRequest(http.MethodPost, "/api/auth/admin/login", `{"username":"alice","password":"pw"}`)
	err := h.AdminLogin(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	h := testHandler(newMockRepo())
	e := echo.New()

	req := jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice"}`)
	err := h.UserLogin(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func asAdmin(c echo.Context, id int) {
	ident := &auth.Identity{ID: id, Username: "admin", Role: auth.RoleAdmin, Active: true}
	c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), ident)))
}

func TestCreateUser_Conflict(t *testing.T) {
	repo := newMockRepo()
	addUser(repo, "alice", "pw", auth.RoleUser, true)
	h := testHandler(repo)
	e := echo.New()

	req := jsonRequest(http.MethodPost, "/api/users", `{"username":"alice","password":"pw","role":"user"}`)
	c := e.NewContext(req, httptest.NewRecorder())
	asAdmin(c, 99)

	err := h.CreateUser(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if he.Message != "Username already taken" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestDeactivateUser_Self(t *testing.T) {
	repo := newMockRepo()
	admin := addUser(repo, "admin", "pw", auth.RoleAdmin, true)
	h := testHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")
	asAdmin(c, admin.ID)

	err := h.DeactivateUser(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if he.Message != "You cannot deactivate your own account" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestListUsers(t *testing.T) {
	repo := newMockRepo()
	addUser(repo, "alice", "pw", auth.RoleUser, true)
	addUser(repo, "bob", "pw", auth.RoleUser, true)
	h := testHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?search=ali", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asAdmin(c, 99)

	if err := h.ListUsers(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Items []User `json:"items"`
		Total int    `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Items[0].Username != "alice" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	h := testHandler(newMockRepo())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")

	err := h.GetUser(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
