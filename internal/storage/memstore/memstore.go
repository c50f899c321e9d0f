// Package memstore is an in-process storage.Store for development runs and tests.
package memstore

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps clients in memory in insertion order.
type Store struct {
	mu      sync.RWMutex
	clients map[string]*models.Client
	order   []string
	scheme  identity.Scheme
}

// New returns an empty store.
func New() *Store {
	return &Store{clients: make(map[string]*models.Client)}
}

func (s *Store) GetClient(_ context.Context, id string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) PutClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	if cp.OptIn == "" {
		cp.OptIn = models.OptInNo
	}
	if _, ok := s.clients[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.clients[c.ID] = &cp
	return nil
}

func (s *Store) UpdateClient(_ context.Context, id string, update storage.ClientUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if update.Contact != nil {
		c.Apply(*update.Contact)
	}
	if update.OptIn != nil {
		c.OptIn = *update.OptIn
	}
	return nil
}

// ScanClients iterates over a snapshot of the IDs taken when ranging starts.
func (s *Store) ScanClients(ctx context.Context) iter.Seq2[*models.Client, error] {
	return func(yield func(*models.Client, error) bool) {
		s.mu.RLock()
		ids := append([]string(nil), s.order...)
		s.mu.RUnlock()

		for _, id := range ids {
			c, err := s.GetClient(ctx, id)
			if err != nil {
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (s *Store) BindScheme(_ context.Context, scheme identity.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheme == "" {
		s.scheme = scheme
	}
	if s.scheme != scheme {
		return fmt.Errorf("%w: have %q, want %q", storage.ErrSchemeMismatch, s.scheme, scheme)
	}
	return nil
}

func (s *Store) Close() error { return nil }

// Len returns the number of clients.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
