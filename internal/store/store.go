// Package store persists the label and card buckets in a Badger database.
//
// The two buckets are independent: each save is a whole-bucket replace
// executed as a single transaction, keyed by the entity's own id. Reads
// fail open (empty bucket, logged), writes propagate their error.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/knowdeckapp/knowdeck/internal/domain"
	domainerrors "github.com/knowdeckapp/knowdeck/internal/errors"
)

const (
	labelPrefix = "label:"
	cardPrefix  = "card:"
)

// Store is the durable adapter over a Badger database.
//
// The connection is opened lazily on first use and shared for the process
// lifetime; concurrent first-time openers block on the same mutex and all
// resolve to the one connection. A failed open is not memoized, so a later
// call may retry.
type Store struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
	db *badger.DB
}

// New creates a Store for the given data directory. The database is not
// opened until the first read or write.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// IsAvailable reports whether the durable store can exist in this
// environment: the data path, or some ancestor it could be created under,
// must be a directory. Pure probe, no side effects.
func (s *Store) IsAvailable() bool {
	if s.path == "" {
		return false
	}
	dir := s.path
	for {
		if info, err := os.Stat(dir); err == nil {
			return info.IsDir()
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// open returns the shared database connection, establishing it on first
// call. Returns a StorageUnavailable domain error when the environment
// cannot host the database.
func (s *Store) open(ctx context.Context) (*badger.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	if !s.IsAvailable() {
		return nil, domainerrors.StorageUnavailable(fmt.Sprintf("data path %q is not usable", s.path))
	}

	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return nil, domainerrors.ErrStorageUnavailable.WithCause(err)
	}

	opts := badger.DefaultOptions(s.path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domainerrors.ErrStorageUnavailable.WithCause(err)
	}

	s.db = db
	s.logger.Info("database opened", "path", s.path)
	return db, nil
}

// Close closes the database connection if one was opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// LoadLabels returns the full labels bucket. Any failure is logged and an
// empty slice returned; a read must never take the application down.
func (s *Store) LoadLabels(ctx context.Context) []domain.Label {
	items, err := loadAll[domain.Label](ctx, s, labelPrefix)
	if err != nil {
		s.logger.Warn("loading labels failed, continuing with empty bucket", "error", err)
		return []domain.Label{}
	}
	return items
}

// LoadCards returns the full cards bucket, failing open like LoadLabels.
func (s *Store) LoadCards(ctx context.Context) []domain.Card {
	items, err := loadAll[domain.Card](ctx, s, cardPrefix)
	if err != nil {
		s.logger.Warn("loading cards failed, continuing with empty bucket", "error", err)
		return []domain.Card{}
	}
	return items
}

// SaveLabels replaces the entire labels bucket with the given snapshot.
// The caller supplies the complete desired contents, not a diff.
func (s *Store) SaveLabels(ctx context.Context, labels []domain.Label) error {
	err := replaceAll(ctx, s, labelPrefix, labels, func(l *domain.Label) string { return l.ID })
	if err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	return nil
}

// SaveCards replaces the entire cards bucket with the given snapshot.
func (s *Store) SaveCards(ctx context.Context, cards []domain.Card) error {
	err := replaceAll(ctx, s, cardPrefix, cards, func(c *domain.Card) string { return c.ID })
	if err != nil {
		return fmt.Errorf("save cards: %w", err)
	}
	return nil
}

// HasAny reports whether either bucket holds at least one record.
// Used by the legacy migration to decide whether the durable store is
// already authoritative.
func (s *Store) HasAny(ctx context.Context) (hasLabels, hasCards bool, err error) {
	db, err := s.open(ctx)
	if err != nil {
		return false, false, err
	}

	err = db.View(func(txn *badger.Txn) error {
		hasLabels = prefixNonEmpty(txn, labelPrefix)
		hasCards = prefixNonEmpty(txn, cardPrefix)
		return nil
	})
	if err != nil {
		return false, false, fmt.Errorf("probe buckets: %w", err)
	}
	return hasLabels, hasCards, nil
}

func prefixNonEmpty(txn *badger.Txn, prefix string) bool {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	it.Rewind()
	return it.ValidForPrefix([]byte(prefix))
}
