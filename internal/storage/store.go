// Package storage provides abstractions for the persisted client roster.
package storage

import (
	"context"
	"errors"
	"iter"

	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/models"
)

var (
	// ErrNotFound is returned when no client has the requested ID.
	ErrNotFound = errors.New("client not found")

	// ErrSchemeMismatch is returned when a store already holds IDs from a
	// different addressing scheme.
	ErrSchemeMismatch = errors.New("store is bound to a different addressing scheme")
)

// ClientUpdate names the fields to change on an existing client.
// Nil members are left untouched.
type ClientUpdate struct {
	Contact *models.ContactFields
	OptIn   *models.OptIn
}

// Store defines the interface for roster storage operations.
// Every operation is an independent single-key read or write; there are no
// multi-key transactions.
type Store interface {
	// GetClient retrieves a client by ID. Returns ErrNotFound if absent.
	GetClient(ctx context.Context, id string) (*models.Client, error)

	// PutClient writes the complete record, replacing any existing one.
	PutClient(ctx context.Context, client *models.Client) error

	// UpdateClient changes selected fields of an existing client.
	// Returns ErrNotFound if absent.
	UpdateClient(ctx context.Context, id string, update ClientUpdate) error

	// ScanClients yields every client. The sequence is single-use; ranging
	// over it again starts a fresh scan.
	ScanClients(ctx context.Context) iter.Seq2[*models.Client, error]

	// BindScheme records the addressing scheme on first use and returns
	// ErrSchemeMismatch if a different one was recorded earlier.
	BindScheme(ctx context.Context, scheme identity.Scheme) error

	// Close releases any resources held by the store.
	Close() error
}
