// Package service implements the operations of the relay and exposes them
// through connect.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/blast/internal/broadcast"
	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/metrics"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/roster"
	"github.com/mmynk/blast/internal/storage"
)

// Relay ties the roster store to the broadcast path. It is shared by the
// connect service and the function-style HTTP endpoint.
type Relay struct {
	store      storage.Store
	reconciler *roster.Reconciler
	resolver   *roster.Resolver
	dispatcher *broadcast.Dispatcher
	metrics    *metrics.Metrics
}

// NewRelay creates a Relay. m may be nil.
func NewRelay(store storage.Store, scheme identity.Scheme, sender broadcast.Sender, m *metrics.Metrics) *Relay {
	return &Relay{
		store:      store,
		reconciler: roster.NewReconciler(store, scheme),
		resolver:   roster.NewResolver(store),
		dispatcher: broadcast.NewDispatcher(sender),
		metrics:    m,
	}
}

// Clients returns every record in scan order.
func (r *Relay) Clients(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	for c, err := range r.store.ScanClients(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list clients: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// Upsert merges rows into the roster.
func (r *Relay) Upsert(ctx context.Context, rows []roster.RawRow) roster.UpsertSummary {
	summary := r.reconciler.Reconcile(ctx, rows)
	r.metrics.ObserveUpsert(summary)
	return summary
}

// SetOptIn changes only the opt-in flag of an existing record.
func (r *Relay) SetOptIn(ctx context.Context, id, value string) (*models.Client, error) {
	optIn, err := models.ParseOptIn(value)
	if err != nil {
		return nil, err
	}
	if err := r.store.UpdateClient(ctx, id, storage.ClientUpdate{OptIn: &optIn}); err != nil {
		return nil, err
	}
	client, err := r.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("Opt-in updated", "client_id", id, "opt_in", optIn)
	return client, nil
}

// Broadcast resolves target and sends message to every recipient found, or
// only lists them when preview is set. The returned summary is never nil;
// on ErrEmptyMessage its status is rejected.
func (r *Relay) Broadcast(ctx context.Context, message string, target roster.Target, preview bool) (*broadcast.Summary, error) {
	res := r.resolver.Resolve(ctx, target)

	var (
		summary *broadcast.Summary
		err     error
	)
	if preview {
		summary, err = r.dispatcher.Preview(ctx, message, res.Recipients())
	} else {
		summary, err = r.dispatcher.Dispatch(ctx, message, res.Recipients())
	}
	if err == nil {
		summary.MissingIDs = res.MissingIDs()
	}
	r.metrics.ObserveDispatch(summary)
	return summary, err
}
