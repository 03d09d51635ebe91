package auth

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// Identity is the verified caller attached to each request.
type Identity struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Active   bool    `json:"is_active"`
	FullName *string `json:"full_name,omitempty"`
}

// Resolver turns verified token claims into a request identity. Two
// strategies exist and are picked per service by configuration, never
// hardcoded in handlers:
//
//   - ClaimsResolver trusts the token payload verbatim. Services without a
//     user directory (scheduling, reports, management) use it; a
//     stale-but-unexpired token keeps working after the account is
//     deactivated.
//   - DirectoryResolver re-queries the user directory and enforces
//     is_active, so deactivation takes effect on the next request. Only the
//     login service, which owns the users table, runs in this mode.
type Resolver interface {
	Resolve(ctx context.Context, claims *Claims) (*Identity, error)
}

type ClaimsResolver struct{}

func (ClaimsResolver) Resolve(_ context.Context, claims *Claims) (*Identity, error) {
	return &Identity{
		ID:       claims.UserID,
		Username: claims.Subject,
		Role:     claims.Role,
		Active:   true,
	}, nil
}

// UserDirectory is the read surface DirectoryResolver needs; the identity
// domain's repository satisfies it.
type UserDirectory interface {
	FindActiveByUsername(ctx context.Context, username string) (*Identity, error)
}

type DirectoryResolver struct {
	users UserDirectory
}

func NewDirectoryResolver(users UserDirectory) *DirectoryResolver {
	return &DirectoryResolver{users: users}
}

func (r *DirectoryResolver) Resolve(ctx context.Context, claims *Claims) (*Identity, error) {
	ident, err := r.users.FindActiveByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return ident, nil
}
