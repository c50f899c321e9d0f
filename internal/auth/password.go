package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid operator or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// DefaultOperator is the name used when a deployment has a single shared login.
const DefaultOperator = "operator"

// PasswordAuthenticator checks a password against a bcrypt hash shared by all
// operators of a deployment.
type PasswordAuthenticator struct {
	hash []byte
}

// NewPasswordAuthenticator wraps a bcrypt hash, typically read from the
// operator_password_hash secret.
func NewPasswordAuthenticator(hash string) (*PasswordAuthenticator, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid operator password hash: %w", err)
	}
	return &PasswordAuthenticator{hash: []byte(hash)}, nil
}

// HashPassword produces a hash suitable for NewPasswordAuthenticator.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Authenticate verifies the password. An empty operator name becomes DefaultOperator.
func (a *PasswordAuthenticator) Authenticate(_ context.Context, operator, credential string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return "", ErrInvalidCredentials
	}
	if operator == "" {
		operator = DefaultOperator
	}
	return operator, nil
}
