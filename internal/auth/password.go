package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// ErrWeakPassword reports a password that fails the length policy.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// CheckPasswordPolicy validates a new password. bcrypt ignores input past 72
// bytes, so longer passwords are refused rather than silently truncated.
func CheckPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > 72 {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}

// HashPassword hashes a password. A cost outside bcrypt's range falls back to
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// PasswordMatches reports whether plain matches hashed. Only a malformed
// stored hash is an error; a wrong password is (false, nil).
func PasswordMatches(hashed, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
