package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type stubDirectory struct {
	users map[string]*Identity
}

func (d *stubDirectory) FindActiveByUsername(_ context.Context, username string) (*Identity, error) {
	u, ok := d.users[username]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

func newAuthContext(e *echo.Echo, token string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	e := echo.New()
	mw := Authenticate(NewVerifier("secret"), ClaimsResolver{})

	c, _ := newAuthContext(e, "")
	err := mw(okHandler)(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if he.Message != "Not authenticated" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestAuthenticate_BadToken(t *testing.T) {
	e := echo.New()
	mw := Authenticate(NewVerifier("secret"), ClaimsResolver{})

	c, _ := newAuthContext(e, "garbage")
	err := mw(okHandler)(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if he.Message != "Invalid or expired token" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestAuthenticate_ClaimsResolver_SetsIdentity(t *testing.T) {
	e := echo.New()
	signer := NewSigner("secret", time.Hour)
	mw := Authenticate(NewVerifier("secret"), ClaimsResolver{})

	token, _ := signer.Issue("alice", 7, RoleAdmin)
	c, _ := newAuthContext(e, token)

	var got *Identity
	err := mw(func(c echo.Context) error {
		got = CurrentIdentity(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Username != "alice" || got.ID != 7 || got.Role != RoleAdmin {
		t.Errorf("unexpected identity: %+v", got)
	}
}

// A claims-trusting service keeps accepting a token after the account is
// deactivated; a directory-backed service rejects it on the next request.
func TestAuthenticate_ResolverModes(t *testing.T) {
	e := echo.New()
	signer := NewSigner("secret", time.Hour)
	token, _ := signer.Issue("ghost", 9, RoleUser)

	claimsMW := Authenticate(NewVerifier("secret"), ClaimsResolver{})
	c, _ := newAuthContext(e, token)
	if err := claimsMW(okHandler)(c); err != nil {
		t.Fatalf("claims resolver: unexpected error: %v", err)
	}

	dir := &stubDirectory{users: map[string]*Identity{}}
	dirMW := Authenticate(NewVerifier("secret"), NewDirectoryResolver(dir))
	c, _ = newAuthContext(e, token)
	err := dirMW(okHandler)(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if he.Message != "User not found" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		ident    *Identity
		required string
		wantCode int
	}{
		{"match", &Identity{Role: RoleAdmin}, RoleAdmin, http.StatusOK},
		{"mismatch", &Identity{Role: RoleUser}, RoleAdmin, http.StatusForbidden},
		{"no hierarchy", &Identity{Role: RoleAdmin}, RoleUser, http.StatusForbidden},
		{"unauthenticated", nil, RoleAdmin, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.ident != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.ident))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireRole(tt.required)(okHandler)(c)
			if tt.wantCode == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != tt.wantCode {
				t.Fatalf("expected %d, got %v", tt.wantCode, err)
			}
			if tt.wantCode == http.StatusForbidden && he.Message != "Insufficient permissions" {
				t.Errorf("unexpected message: %v", he.Message)
			}
		})
	}
}

func TestRequireInternalKey(t *testing.T) {
	e := echo.New()

	call := func(key, header string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(InternalKeyHeader, header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		return RequireInternalKey(key)(okHandler)(c)
	}

	if err := call("", ""); err != nil {
		t.Errorf("unset key must leave the surface open, got %v", err)
	}
	if err := call("s3cret", "s3cret"); err != nil {
		t.Errorf("matching key: unexpected error: %v", err)
	}
	for _, header := range []string{"", "wrong"} {
		err := call("s3cret", header)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %v", header, err)
		}
		if he.Message != "Invalid or missing internal key" {
			t.Errorf("unexpected message: %v", he.Message)
		}
	}
}
