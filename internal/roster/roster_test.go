package roster

import (
	"context"
	"errors"
	"iter"

	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/storage"
)

var errBoom = errors.New("boom")

// flakyStore fails selected operations for selected IDs.
type flakyStore struct {
	storage.Store
	failGet    map[string]bool
	failPut    map[string]bool
	failUpdate map[string]bool
	scanErr    error
	puts       int
	updates    int
}

func (f *flakyStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	if f.failGet[id] {
		return nil, errBoom
	}
	return f.Store.GetClient(ctx, id)
}

func (f *flakyStore) PutClient(ctx context.Context, c *models.Client) error {
	if f.failPut[c.ID] {
		return errBoom
	}
	f.puts++
	return f.Store.PutClient(ctx, c)
}

func (f *flakyStore) UpdateClient(ctx context.Context, id string, u storage.ClientUpdate) error {
	if f.failUpdate[id] {
		return errBoom
	}
	f.updates++
	return f.Store.UpdateClient(ctx, id, u)
}

func (f *flakyStore) ScanClients(ctx context.Context) iter.Seq2[*models.Client, error] {
	if f.scanErr == nil {
		return f.Store.ScanClients(ctx)
	}
	return func(yield func(*models.Client, error) bool) {
		for c, err := range f.Store.ScanClients(ctx) {
			if !yield(c, err) {
				return
			}
			yield(nil, f.scanErr)
			return
		}
	}
}
