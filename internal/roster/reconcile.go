package roster

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/storage"
)

// UpsertSummary reports the outcome of one import batch.
type UpsertSummary struct {
	Processed int        `json:"processed_count"`
	Skipped   int        `json:"skipped_count"`
	Created   int        `json:"created_count"`
	Updated   int        `json:"updated_count"`
	Failed    int        `json:"failed_count"`
	Errors    []RowError `json:"errors,omitempty"`
}

// RowError describes a row that was skipped or could not be written.
// Row is the zero-based position in the input batch.
type RowError struct {
	Row   int    `json:"row"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// Reconciler merges import rows into the roster.
type Reconciler struct {
	store storage.Store
	key   identity.KeyFunc
}

// NewReconciler creates a Reconciler keying rows with the given scheme.
func NewReconciler(store storage.Store, scheme identity.Scheme) *Reconciler {
	return &Reconciler{store: store, key: scheme.KeyFunc()}
}

// Reconcile applies rows in order. Existing clients get their contact fields
// overwritten and keep their opt-in; new clients are created with opt-in N.
// A failing row is recorded and the batch continues; nothing spans rows, so a
// later row with the same ID simply overwrites an earlier one.
func (r *Reconciler) Reconcile(ctx context.Context, rows []RawRow) UpsertSummary {
	var summary UpsertSummary

	for i, raw := range rows {
		summary.Processed++

		row, err := ParseRow(raw)
		if err != nil {
			slog.Warn("Skipping roster row", "row", i, "error", err)
			summary.Skipped++
			summary.Errors = append(summary.Errors, RowError{Row: i, Error: err.Error()})
			continue
		}

		id := r.key(row.FirstName, row.LastName, row.PhoneNumber)
		created, err := r.upsert(ctx, id, row)
		if err != nil {
			slog.Error("Roster row failed", "row", i, "client_id", id, "error", err)
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: i, ID: id, Error: err.Error()})
			continue
		}

		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	slog.Info("Roster import finished",
		"processed", summary.Processed,
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary
}

func (r *Reconciler) upsert(ctx context.Context, id string, row Row) (created bool, err error) {
	_, err = r.store.GetClient(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		client := &models.Client{ID: id, OptIn: models.OptInNo}
		client.Apply(row.Contact())
		if err := r.store.PutClient(ctx, client); err != nil {
			return false, err
		}
		slog.Debug("Client created", "client_id", id)
		return true, nil
	case err != nil:
		return false, err
	}

	contact := row.Contact()
	if err := r.store.UpdateClient(ctx, id, storage.ClientUpdate{Contact: &contact}); err != nil {
		return false, err
	}
	slog.Debug("Client updated", "client_id", id)
	return false, nil
}
