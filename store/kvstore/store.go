// Package kvstore implements the stores on top of a key-value medium. Every
// table is one JSON array under its own key; writes rewrite the whole table.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"prospectcrm/models"
	"prospectcrm/store"
)

// Table keys.
const (
	KeyStages          = "stages"
	KeyStageActions    = "stageActions"
	KeyProspectStages  = "prospectStages"
	KeyProspectActions = "prospectActions"
	KeyEmails          = "emails"
	KeyProspects       = "prospectos"
	KeyClients         = "clients"
	KeyUsers           = "users"
)

type Store struct {
	kv  KV
	now func() time.Time

	// mu serializes read-modify-write cycles issued through this Store.
	mu sync.Mutex
}

var _ store.Backing = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize writes the default data into every table that does not exist yet.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := models.DefaultSeed(s.timestamp())
	tables := []struct {
		key  string
		rows interface{}
	}{
		{KeyStages, seed.Stages},
		{KeyStageActions, seed.StageActions},
		{KeyProspectStages, seed.ProspectStages},
		{KeyProspectActions, seed.ProspectActions},
		{KeyEmails, seed.Emails},
		{KeyProspects, seed.Prospects},
		{KeyClients, seed.Clients},
		{KeyUsers, seed.Users},
	}
	for _, t := range tables {
		_, ok, err := s.kv.Get(ctx, t.key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		raw, err := json.Marshal(t.rows)
		if err != nil {
			return fmt.Errorf("encode %s: %w", t.key, err)
		}
		if err := s.kv.Set(ctx, t.key, raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// timestamp is truncated to microseconds, the finest precision every medium keeps.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func load[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	rows := []T{}
	if !ok || len(raw) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return rows, nil
}

func save[T any](ctx context.Context, kv KV, key string, rows []T) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}
