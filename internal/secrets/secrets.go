// Package secrets supplies credentials at process start.
//
// Names are lower_snake_case ("twilio_auth_token"). EnvProvider maps them to
// BLAST_TWILIO_AUTH_TOKEN; DirProvider reads <dir>/twilio_auth_token.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a provider has no value for a name.
var ErrNotFound = errors.New("secret not found")

// Well-known secret names.
const (
	TwilioAccountSID     = "twilio_account_sid"
	TwilioAuthToken      = "twilio_auth_token"
	TwilioFromNumber     = "twilio_from_number"
	JWTSigningKey        = "jwt_signing_key"
	OperatorPasswordHash = "operator_password_hash"
)

// Provider looks up a secret by name.
type Provider interface {
	Secret(ctx context.Context, name string) (string, error)
}

// EnvProvider reads secrets from environment variables.
type EnvProvider struct {
	// Prefix is prepended to the upper-cased name. Defaults to "BLAST_".
	Prefix string
}

func (p EnvProvider) Secret(_ context.Context, name string) (string, error) {
	prefix := p.Prefix
	if prefix == "" {
		prefix = "BLAST_"
	}
	key := prefix + strings.ToUpper(name)
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, key)
}

// DirProvider reads one file per secret, as mounted by most orchestrators.
type DirProvider struct {
	Dir string
}

func (p DirProvider) Secret(_ context.Context, name string) (string, error) {
	if p.Dir == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := os.ReadFile(filepath.Join(p.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrNotFound, name)
	}
	return v, nil
}

// Chain returns the first value any provider has. A provider error other
// than ErrNotFound stops the search.
type Chain []Provider

func (c Chain) Secret(ctx context.Context, name string) (string, error) {
	for _, p := range c {
		v, err := p.Secret(ctx, name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Static is a fixed map of secrets.
type Static map[string]string

func (s Static) Secret(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
