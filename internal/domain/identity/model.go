// Package identity owns the users table and the login flows. It is the only
// service allowed to write users; every other service consumes identity
// solely through token claims.
package identity

import "github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"

// User is a staff account. The password hash never serializes.
type User struct {
	ID             int     `json:"id"`
	Username       string  `json:"username"`
	HashedPassword string  `json:"-"`
	Role           string  `json:"role"`
	IsActive       bool    `json:"is_active"`
	FullName       *string `json:"full_name,omitempty"`
}

// Identity converts a user row to the platform identity shape.
func (u *User) Identity() *auth.Identity {
	return &auth.Identity{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Active:   u.IsActive,
		FullName: u.FullName,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	Role        string  `json:"role"`
	Username    string  `json:"username"`
	FullName    *string `json:"full_name,omitempty"`
}

type CreateUserInput struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	FullName *string `json:"full_name"`
}

// UpdateUserInput uses pointers so omitted fields stay untouched.
type UpdateUserInput struct {
	Password *string `json:"password"`
	Role     *string `json:"role"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}
