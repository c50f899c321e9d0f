package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)

	token, err := m.Generate("frontdesk")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Operator != "frontdesk" || claims.Subject != "frontdesk" {
		t.Errorf("claims = %+v", claims)
	}

	other := NewJWTManager("a-different-secret-key-entirely!", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong key, got %v", err)
	}

	expired := NewJWTManager("test-secret-key-32-bytes-long!!!", -time.Minute)
	old, _ := expired.Generate("frontdesk")
	if _, err := m.Validate(old); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := m.Validate("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestPasswordAuthenticator(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	a, err := NewPasswordAuthenticator(hash)
	if err != nil {
		t.Fatalf("NewPasswordAuthenticator failed: %v", err)
	}

	ctx := context.Background()
	got, err := a.Authenticate(ctx, "", "correct horse")
	if err != nil || got != DefaultOperator {
		t.Errorf("Authenticate = %q, %v", got, err)
	}
	got, err = a.Authenticate(ctx, "frontdesk", "correct horse")
	if err != nil || got != "frontdesk" {
		t.Errorf("Authenticate = %q, %v", got, err)
	}
	if _, err := a.Authenticate(ctx, "", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := NewPasswordAuthenticator("not-a-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
}
