// Package redisstore provides a Redis-backed implementation of storage.Store.
//
// Each client is a hash at "<prefix>client:<id>". Scan order comes from a
// sorted set scored by a monotonically increasing sequence, so the first
// insertion of an ID fixes its position.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/go-redis/redis/v8"

	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// DefaultPrefix namespaces every key the store touches.
const DefaultPrefix = "blast:roster:"

const scanPageSize = 100

const (
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldPhone     = "phone_number"
	fieldEmail     = "email"
	fieldNotes     = "notes"
	fieldDays      = "days_since_last_appointment"
	fieldOptIn     = "opt_in"
)

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store implements storage.Store on Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client. An empty prefix means DefaultPrefix.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) clientKey(id string) string { return s.prefix + "client:" + id }
func (s *Store) indexKey() string          { return s.prefix + "index" }
func (s *Store) seqKey() string            { return s.prefix + "seq" }
func (s *Store) schemeKey() string         { return s.prefix + "scheme" }

func contactValues(f models.ContactFields) map[string]interface{} {
	return map[string]interface{}{
		fieldFirstName: f.FirstName,
		fieldLastName:  f.LastName,
		fieldPhone:     f.PhoneNumber,
		fieldEmail:     f.Email,
		fieldNotes:     f.Notes,
		fieldDays:      f.DaysSinceLastAppointment,
	}
}

func clientFromHash(id string, h map[string]string) *models.Client {
	return &models.Client{
		ID:                       id,
		FirstName:                h[fieldFirstName],
		LastName:                 h[fieldLastName],
		PhoneNumber:              h[fieldPhone],
		Email:                    h[fieldEmail],
		Notes:                    h[fieldNotes],
		DaysSinceLastAppointment: h[fieldDays],
		OptIn:                    models.OptIn(h[fieldOptIn]),
	}
}

// GetClient retrieves a client by ID.
func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	h, err := s.client.HGetAll(ctx, s.clientKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if len(h) == 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return clientFromHash(id, h), nil
}

// PutClient writes the full record and indexes the ID if it is new.
func (s *Store) PutClient(ctx context.Context, c *models.Client) error {
	optIn := c.OptIn
	if optIn == "" {
		optIn = models.OptInNo
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	values := contactValues(c.Contact())
	values[fieldOptIn] = string(optIn)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.clientKey(c.ID), values)
		pipe.ZAddNX(ctx, s.indexKey(), &redis.Z{Score: float64(seq), Member: c.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put client: %w", err)
	}
	return nil
}

// UpdateClient changes only the fields set in update.
// The existence check and the write are separate commands.
func (s *Store) UpdateClient(ctx context.Context, id string, update storage.ClientUpdate) error {
	n, err := s.client.Exists(ctx, s.clientKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	values := map[string]interface{}{}
	if update.Contact != nil {
		values = contactValues(*update.Contact)
	}
	if update.OptIn != nil {
		values[fieldOptIn] = string(*update.OptIn)
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, s.clientKey(id), values).Err(); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// ScanClients pages through the index in insertion order.
func (s *Store) ScanClients(ctx context.Context) iter.Seq2[*models.Client, error] {
	return func(yield func(*models.Client, error) bool) {
		for start := int64(0); ; start += scanPageSize {
			ids, err := s.client.ZRange(ctx, s.indexKey(), start, start+scanPageSize-1).Result()
			if err != nil {
				yield(nil, fmt.Errorf("failed to scan clients: %w", err))
				return
			}
			if len(ids) == 0 {
				return
			}

			cmds := make([]*redis.StringStringMapCmd, len(ids))
			_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				for i, id := range ids {
					cmds[i] = pipe.HGetAll(ctx, s.clientKey(id))
				}
				return nil
			})
			if err != nil {
				yield(nil, fmt.Errorf("failed to scan clients: %w", err))
				return
			}

			for i, cmd := range cmds {
				h := cmd.Val()
				if len(h) == 0 {
					continue
				}
				if !yield(clientFromHash(ids[i], h), nil) {
					return
				}
			}

			if len(ids) < scanPageSize {
				return
			}
		}
	}
}

// BindScheme records scheme the first time and verifies it afterwards.
func (s *Store) BindScheme(ctx context.Context, scheme identity.Scheme) error {
	if err := s.client.SetNX(ctx, s.schemeKey(), string(scheme), 0).Err(); err != nil {
		return fmt.Errorf("failed to record addressing scheme: %w", err)
	}
	bound, err := s.client.Get(ctx, s.schemeKey()).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("addressing scheme key vanished")
	}
	if err != nil {
		return fmt.Errorf("failed to read addressing scheme: %w", err)
	}
	if bound != string(scheme) {
		return fmt.Errorf("%w: have %q, want %q", storage.ErrSchemeMismatch, bound, scheme)
	}
	return nil
}
