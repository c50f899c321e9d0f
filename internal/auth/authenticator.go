package auth

import "context"

// Authenticator verifies operator credentials.
// This abstraction allows swapping between auth methods (shared password,
// per-operator accounts, SSO) without changing the service layer.
type Authenticator interface {
	// Authenticate checks credential and returns the operator name on success.
	Authenticate(ctx context.Context, operator, credential string) (string, error)
}
