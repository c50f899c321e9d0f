package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/blast/internal/auth"
	"github.com/mmynk/blast/internal/config"
	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/secrets"
	"github.com/mmynk/blast/internal/sms"
	"github.com/mmynk/blast/internal/storage"
)

func TestOpenStore_SchemeBinding(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "roster.db")

	store, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	store.Close()

	cfg.AddressingScheme = string(identity.SchemePhone)
	if _, err := openStore(ctx, cfg); !errors.Is(err, storage.ErrSchemeMismatch) {
		t.Errorf("expected ErrSchemeMismatch, got %v", err)
	}
}

func TestOpenStore_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory
	store, err := openStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	store.Close()
}

func TestNewSender(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	sender, err := newSender(ctx, cfg, secrets.Static{})
	if err != nil {
		t.Fatalf("newSender failed: %v", err)
	}
	if _, ok := sender.(sms.LogSender); !ok {
		t.Errorf("expected LogSender, got %T", sender)
	}

	cfg.SMS.Provider = config.ProviderTwilio
	if _, err := newSender(ctx, cfg, secrets.Static{}); !errors.Is(err, sms.ErrFatalInit) {
		t.Errorf("expected ErrFatalInit without credentials, got %v", err)
	}
}

func TestNewAuth(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	if _, _, err := newAuth(ctx, cfg, secrets.Static{}); err == nil {
		t.Error("expected error without secrets")
	}

	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	provider := secrets.Static{
		secrets.OperatorPasswordHash: hash,
		secrets.JWTSigningKey:        "test-secret-key-32-bytes-long!!!",
	}
	authenticator, jwtManager, err := newAuth(ctx, cfg, provider)
	if err != nil {
		t.Fatalf("newAuth failed: %v", err)
	}
	operator, err := authenticator.Authenticate(ctx, "", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	token, err := jwtManager.Generate(operator)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := jwtManager.Validate(token); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}
