package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12
	MaxPasswordLen    = 72 // bcrypt ignores input past 72 bytes
)

// HashPassword hashes password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	if len(password) > MaxPasswordLen {
		return "", fmt.Errorf("password must be at most %d bytes", MaxPasswordLen)
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// CompareCode reports whether two verification codes are equal in constant time.
func CompareCode(expected, given string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}

// dummyHash is compared against when no user matches, so a miss costs
// about as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("conecta-dummy-password"), DefaultBcryptCost)

// CompareDummy burns one bcrypt comparison.
func CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
