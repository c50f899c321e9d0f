package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "blast-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func collect(t *testing.T, store *SQLiteStore) []*models.Client {
	t.Helper()
	var out []*models.Client
	for c, err := range store.ScanClients(context.Background()) {
		if err != nil {
			t.Fatalf("ScanClients failed: %v", err)
		}
		out = append(out, c)
	}
	return out
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("PutClient then GetClient round-trips every field", func(t *testing.T) {
		original := &models.Client{
			ID:                       "a79b84d8a9",
			FirstName:                "Jane",
			LastName:                 "Doe",
			PhoneNumber:              "+1555",
			Email:                    "jane@example.com",
			Notes:                    "prefers mornings",
			DaysSinceLastAppointment: "14",
			OptIn:                    models.OptInYes,
		}
		if err := store.PutClient(ctx, original); err != nil {
			t.Fatalf("PutClient failed: %v", err)
		}

		got, err := store.GetClient(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetClient failed: %v", err)
		}
		if *got != *original {
			t.Errorf("GetClient = %+v, want %+v", got, original)
		}
	})

	t.Run("PutClient defaults opt-in to N", func(t *testing.T) {
		if err := store.PutClient(ctx, &models.Client{ID: "noopt", FirstName: "Bob", PhoneNumber: "+2"}); err != nil {
			t.Fatalf("PutClient failed: %v", err)
		}
		got, err := store.GetClient(ctx, "noopt")
		if err != nil {
			t.Fatalf("GetClient failed: %v", err)
		}
		if got.OptIn != models.OptInNo {
			t.Errorf("OptIn = %q, want N", got.OptIn)
		}
	})

	t.Run("GetClient returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetClient(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateClient contact fields leaves opt-in", func(t *testing.T) {
		err := store.UpdateClient(ctx, "a79b84d8a9", storage.ClientUpdate{
			Contact: &models.ContactFields{
				FirstName:   "Jane",
				LastName:    "Doe",
				PhoneNumber: "+1555999",
				Email:       "j@x.com",
			},
		})
		if err != nil {
			t.Fatalf("UpdateClient failed: %v", err)
		}

		got, _ := store.GetClient(ctx, "a79b84d8a9")
		if got.PhoneNumber != "+1555999" || got.Email != "j@x.com" {
			t.Errorf("contact not updated: %+v", got)
		}
		if got.Notes != "" {
			t.Errorf("Notes = %q, want overwritten to empty", got.Notes)
		}
		if got.OptIn != models.OptInYes {
			t.Errorf("OptIn = %q, want Y", got.OptIn)
		}
	})

	t.Run("UpdateClient opt-in only", func(t *testing.T) {
		n := models.OptInNo
		if err := store.UpdateClient(ctx, "a79b84d8a9", storage.ClientUpdate{OptIn: &n}); err != nil {
			t.Fatalf("UpdateClient failed: %v", err)
		}
		got, _ := store.GetClient(ctx, "a79b84d8a9")
		if got.OptIn != models.OptInNo {
			t.Errorf("OptIn = %q, want N", got.OptIn)
		}
		if got.PhoneNumber != "+1555999" {
			t.Errorf("PhoneNumber changed to %q", got.PhoneNumber)
		}
	})

	t.Run("UpdateClient unknown id", func(t *testing.T) {
		y := models.OptInYes
		err := store.UpdateClient(ctx, "missing", storage.ClientUpdate{OptIn: &y})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		err = store.UpdateClient(ctx, "missing", storage.ClientUpdate{})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("empty update: expected ErrNotFound, got %v", err)
		}
	})
}

func TestScanClients_InsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := store.PutClient(ctx, &models.Client{ID: id, FirstName: id, PhoneNumber: "+" + id}); err != nil {
			t.Fatalf("PutClient failed: %v", err)
		}
	}
	// Replacing an existing record keeps its position.
	if err := store.PutClient(ctx, &models.Client{ID: "c", FirstName: "c2", PhoneNumber: "+c"}); err != nil {
		t.Fatalf("PutClient failed: %v", err)
	}

	clients := collect(t, store)
	var ids []string
	for _, c := range clients {
		ids = append(ids, c.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "a" || ids[2] != "b" {
		t.Errorf("scan order = %v, want [c a b]", ids)
	}
	if clients[0].FirstName != "c2" {
		t.Errorf("FirstName = %q, want c2", clients[0].FirstName)
	}

	// A fresh range re-scans.
	if again := collect(t, store); len(again) != 3 {
		t.Errorf("second scan returned %d clients, want 3", len(again))
	}
}

func TestScanClients_StopEarly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		store.PutClient(ctx, &models.Client{ID: id, FirstName: id, PhoneNumber: "+1"})
	}

	seen := 0
	for _, err := range store.ScanClients(ctx) {
		if err != nil {
			t.Fatal(err)
		}
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("seen = %d, want 1", seen)
	}
	// The connection must have been released.
	if _, err := store.GetClient(ctx, "b"); err != nil {
		t.Errorf("GetClient after early break: %v", err)
	}
}

func TestBindScheme(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.BindScheme(ctx, identity.SchemeDerived); err != nil {
		t.Fatalf("first BindScheme failed: %v", err)
	}
	if err := store.BindScheme(ctx, identity.SchemeDerived); err != nil {
		t.Errorf("repeat BindScheme failed: %v", err)
	}
	err := store.BindScheme(ctx, identity.SchemePhone)
	if !errors.Is(err, storage.ErrSchemeMismatch) {
		t.Errorf("expected ErrSchemeMismatch, got %v", err)
	}
}
