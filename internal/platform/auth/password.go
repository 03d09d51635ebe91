package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	dummyOnce sync.Once
	dummyHash string
)

// HashPassword produces a bcrypt hash at the default cost.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the bcrypt hash.
func CheckPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// DummyHash returns a precomputed bcrypt hash at the same cost as real
// credentials. Login code verifies against it when no matching user row
// exists, so a missing username costs the same wall time as a wrong password
// and response latency does not leak which usernames exist.
func DummyHash() string {
	dummyOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte("__dummy__"), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		dummyHash = string(b)
	})
	return dummyHash
}
