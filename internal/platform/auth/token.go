package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles understood by every service. There is no hierarchy: an admin token is
// not accepted where a user token is required, and vice versa.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the token contract shared by all five services: subject is the
// username, plus the numeric user id and the role. Issued once at login,
// never refreshed, and consumed as-is until expiry; account changes after
// issuance (deactivation, role change) do not invalidate an outstanding
// token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"id"`
	Role   string `json:"role"`
}

// Signer mints tokens. Only the login service holds one; the other services
// only verify. It wraps the shared symmetric secret so that swapping in an
// asymmetric scheme later only touches this type.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) Issue(username string, userID int, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
		Role:   role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verifier decodes and validates a token: signature, expiry, and structural
// sanity. Every service verifies independently with the shared secret; there
// is no central session store and no revocation channel. Fails closed with
// ErrInvalidToken on any failure so callers cannot distinguish why.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
