// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

const clientColumns = "id, first_name, last_name, phone_number, email, notes, days_since_last_appointment, opt_in"

const schemeKey = "addressing_scheme"

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	c := &models.Client{}
	var optIn string
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber,
		&c.Email, &c.Notes, &c.DaysSinceLastAppointment, &optIn); err != nil {
		return nil, err
	}
	c.OptIn = models.OptIn(optIn)
	return c, nil
}

// GetClient retrieves a client by ID.
func (s *SQLiteStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// PutClient inserts or fully replaces a client. The original insertion
// position is kept so scans stay in first-seen order.
func (s *SQLiteStore) PutClient(ctx context.Context, c *models.Client) error {
	optIn := c.OptIn
	if optIn == "" {
		optIn = models.OptInNo
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     first_name = excluded.first_name,
		     last_name = excluded.last_name,
		     phone_number = excluded.phone_number,
		     email = excluded.email,
		     notes = excluded.notes,
		     days_since_last_appointment = excluded.days_since_last_appointment,
		     opt_in = excluded.opt_in`,
		c.ID, c.FirstName, c.LastName, c.PhoneNumber, c.Email, c.Notes,
		c.DaysSinceLastAppointment, string(optIn),
	)
	if err != nil {
		return fmt.Errorf("failed to put client: %w", err)
	}
	return nil
}

// UpdateClient changes only the fields set in update.
func (s *SQLiteStore) UpdateClient(ctx context.Context, id string, update storage.ClientUpdate) error {
	var (
		sets []string
		args []any
	)
	if f := update.Contact; f != nil {
		sets = append(sets,
			"first_name = ?", "last_name = ?", "phone_number = ?",
			"email = ?", "notes = ?", "days_since_last_appointment = ?",
		)
		args = append(args, f.FirstName, f.LastName, f.PhoneNumber,
			f.Email, f.Notes, f.DaysSinceLastAppointment)
	}
	if update.OptIn != nil {
		sets = append(sets, "opt_in = ?")
		args = append(args, string(*update.OptIn))
	}
	if len(sets) == 0 {
		_, err := s.GetClient(ctx, id)
		return err
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE clients SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

// ScanClients yields clients in insertion order.
func (s *SQLiteStore) ScanClients(ctx context.Context) iter.Seq2[*models.Client, error] {
	return func(yield func(*models.Client, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			"SELECT "+clientColumns+" FROM clients ORDER BY rowid",
		)
		if err != nil {
			yield(nil, fmt.Errorf("failed to scan clients: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanClient(rows)
			if err != nil {
				yield(nil, fmt.Errorf("failed to scan client: %w", err))
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to iterate clients: %w", err))
		}
	}
}

// BindScheme records scheme the first time and verifies it afterwards.
func (s *SQLiteStore) BindScheme(ctx context.Context, scheme identity.Scheme) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)",
		schemeKey, string(scheme),
	); err != nil {
		return fmt.Errorf("failed to record addressing scheme: %w", err)
	}

	var bound string
	if err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", schemeKey,
	).Scan(&bound); err != nil {
		return fmt.Errorf("failed to read addressing scheme: %w", err)
	}
	if bound != string(scheme) {
		return fmt.Errorf("%w: have %q, want %q", storage.ErrSchemeMismatch, bound, scheme)
	}
	return nil
}
