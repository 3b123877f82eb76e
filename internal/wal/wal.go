// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
)

var (
	ErrWALClosed     = errors.New("WAL is closed")
	ErrNilPayload    = errors.New("payload cannot be nil")
	ErrEmptyEntryID  = errors.New("entry ID cannot be empty")
	ErrEntryNotFound = errors.New("entry not found")
)

const prefixPending = "pending:"

// Entry is one pending delivery.
type Entry struct {
	ID            string          `json:"id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
}

// UnmarshalPayload decodes the payload into v.
func (e *Entry) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Config controls the Badger database.
type Config struct {
	Path       string
	SyncWrites bool
	EntryTTL   time.Duration
	// InMemory keeps everything in RAM; Path is ignored. Used by tests.
	InMemory bool
	GCRatio  float64
}

// ConfigFrom maps the wal section of the service configuration.
func ConfigFrom(c config.WALConfig) Config {
	return Config{Path: c.Path, SyncWrites: c.SyncWrites, EntryTTL: c.EntryTTL, GCRatio: 0.5}
}

// BadgerWAL implements the write-ahead log on BadgerDB.
type BadgerWAL struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the WAL.
func Open(cfg Config) (*BadgerWAL, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("WAL path is required")
	}
	if cfg.GCRatio <= 0 || cfg.GCRatio >= 1 {
		cfg.GCRatio = 0.5
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Dur("entry_ttl", cfg.EntryTTL).
		Msg("WAL opened")
	return &BadgerWAL{db: db, config: cfg}, nil
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWALClosed
	}
	return nil
}

// Write persists payload and returns the new entry ID.
func (w *BadgerWAL) Write(ctx context.Context, payload interface{}) (string, error) {
	if err := w.checkOpen(); err != nil {
		return "", err
	}
	if payload == nil {
		return "", ErrNilPayload
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	entry := Entry{
		ID:        uuid.New().String(),
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.put(&entry); err != nil {
		return "", err
	}
	metrics.WALOperations.WithLabelValues("write").Inc()
	return entry.ID, nil
}

func (w *BadgerWAL) put(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return w.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixPending+entry.ID), data)
		if w.config.EntryTTL > 0 {
			// keep the original expiry when rewriting an entry
			remaining := w.config.EntryTTL - time.Since(entry.CreatedAt)
			if remaining < time.Second {
				remaining = time.Second
			}
			e = e.WithTTL(remaining)
		}
		return txn.SetEntry(e)
	})
}

// Confirm removes an entry after successful delivery.
func (w *BadgerWAL) Confirm(ctx context.Context, entryID string) error {
	if err := w.Delete(ctx, entryID); err != nil {
		return err
	}
	metrics.WALOperations.WithLabelValues("confirm").Inc()
	return nil
}

// Delete removes an entry without counting it as delivered.
func (w *BadgerWAL) Delete(_ context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}
	key := []byte(prefixPending + entryID)
	return w.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		} else if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		return txn.Delete(key)
	})
}

// GetPending returns all unconfirmed entries, oldest first by key order of
// a consistent snapshot.
func (w *BadgerWAL) GetPending(ctx context.Context) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("WAL failed to unmarshal entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// UpdateAttempt records a failed delivery attempt.
func (w *BadgerWAL) UpdateAttempt(_ context.Context, entryID string, lastError string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	var entry Entry
	err := w.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixPending + entryID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return err
	}

	entry.Attempts++
	entry.LastAttemptAt = time.Now().UTC()
	entry.LastError = lastError
	if err := w.put(&entry); err != nil {
		return err
	}
	metrics.WALOperations.WithLabelValues("retry").Inc()
	return nil
}

// PendingCount counts entries awaiting confirmation.
func (w *BadgerWAL) PendingCount() int {
	if w.checkOpen() != nil {
		return 0
	}
	n := 0
	_ = w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// RunGC reclaims value log space until Badger reports nothing to rewrite.
func (w *BadgerWAL) RunGC() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.config.InMemory {
		return nil
	}
	for {
		err := w.db.RunValueLogGC(w.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the database. Further calls return ErrWALClosed.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("WAL closed")
	return nil
}
