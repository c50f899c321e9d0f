package roster

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/storage"
)

// Target selects broadcast recipients: everyone, or the listed IDs.
type Target struct {
	All bool
	IDs []string
}

// Resolver expands targets into recipients.
type Resolver struct {
	store storage.Store
}

// NewResolver creates a Resolver over store.
func NewResolver(store storage.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolution is a lazily evaluated set of recipients.
type Resolution struct {
	seq     iter.Seq2[models.Recipient, error]
	missing []string
}

// Recipients yields recipients in scan order (All) or input order (IDs).
// Lookup failures are yielded as errors without ending the sequence, except
// for a failed scan, which cannot continue.
func (r *Resolution) Recipients() iter.Seq2[models.Recipient, error] {
	return r.seq
}

// MissingIDs lists targets that were not found or had no phone number.
// It is complete only after Recipients has been fully ranged over.
func (r *Resolution) MissingIDs() []string {
	return r.missing
}

// Resolve builds the recipient sequence for target. No store call is made
// until the sequence is ranged over; ranging again repeats the lookups.
func (r *Resolver) Resolve(ctx context.Context, target Target) *Resolution {
	res := &Resolution{}
	if target.All {
		res.seq = r.scanAll(ctx, res)
	} else {
		res.seq = r.lookup(ctx, target.IDs, res)
	}
	return res
}

func (r *Resolver) scanAll(ctx context.Context, res *Resolution) iter.Seq2[models.Recipient, error] {
	return func(yield func(models.Recipient, error) bool) {
		res.missing = nil
		for c, err := range r.store.ScanClients(ctx) {
			if err != nil {
				yield(models.Recipient{}, err)
				return
			}
			if c.PhoneNumber == "" {
				slog.Warn("Client has no phone number", "client_id", c.ID)
				res.missing = append(res.missing, c.ID)
				continue
			}
			if !yield(models.Recipient{ID: c.ID, PhoneNumber: c.PhoneNumber}, nil) {
				return
			}
		}
	}
}

func (r *Resolver) lookup(ctx context.Context, ids []string, res *Resolution) iter.Seq2[models.Recipient, error] {
	return func(yield func(models.Recipient, error) bool) {
		res.missing = nil
		for _, id := range ids {
			c, err := r.store.GetClient(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				slog.Warn("No client found", "client_id", id)
				res.missing = append(res.missing, id)
				continue
			}
			if err != nil {
				if !yield(models.Recipient{ID: id}, fmt.Errorf("failed to look up %s: %w", id, err)) {
					return
				}
				continue
			}
			if c.PhoneNumber == "" {
				slog.Warn("Client has no phone number", "client_id", id)
				res.missing = append(res.missing, id)
				continue
			}
			if !yield(models.Recipient{ID: c.ID, PhoneNumber: c.PhoneNumber}, nil) {
				return
			}
		}
	}
}
