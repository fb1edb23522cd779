// Package legacy migrates data out of the flat key-value storage format
// that predates the bucket database: a single JSON file of string keys,
// two of which hold JSON-encoded arrays of labels and cards.
package legacy

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"

	"github.com/knowdeckapp/knowdeck/internal/domain"
	"github.com/knowdeckapp/knowdeck/internal/store"
	"github.com/knowdeckapp/knowdeck/internal/validation"
)

// FileName is the legacy flat storage file inside the data directory.
const FileName = "legacy-storage.json"

const (
	labelsKey = "knowledge-storage:labels"
	cardsKey  = "knowledge-storage:cards"
)

// Migrate transfers legacy data into the bucket store, at most once.
//
// Safe to invoke on every startup: it only acts when both buckets are
// empty and legacy data exists. The durable store is never overwritten,
// and the legacy file is never deleted; it stays behind as a fallback
// copy. Returns whether a migration happened.
func Migrate(ctx context.Context, s *store.Store, path string, v *validation.Validator, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	labels, cards := loadLegacy(path, v, logger)

	hasLabels, hasCards, err := s.HasAny(ctx)
	if err != nil {
		return false, fmt.Errorf("probe durable store: %w", err)
	}
	if hasLabels || hasCards {
		logger.Debug("durable store already has data, skipping migration")
		return false, nil
	}

	if len(labels) == 0 && len(cards) == 0 {
		logger.Debug("no legacy data to migrate")
		return false, nil
	}

	if len(labels) > 0 {
		if err := s.SaveLabels(ctx, labels); err != nil {
			return false, fmt.Errorf("migrate labels: %w", err)
		}
		logger.Info("migrated labels from legacy storage", "count", len(labels))
	}

	if len(cards) > 0 {
		if err := s.SaveCards(ctx, cards); err != nil {
			return false, fmt.Errorf("migrate cards: %w", err)
		}
		logger.Info("migrated cards from legacy storage", "count", len(cards))
	}

	return true, nil
}

// loadLegacy reads the legacy file, failing open to empty collections on
// any parse or validation problem.
func loadLegacy(path string, v *validation.Validator, logger *slog.Logger) ([]domain.Label, []domain.Card) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("reading legacy storage failed", "path", path, "error", err)
		}
		return nil, nil
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn("legacy storage is not valid JSON, ignoring", "path", path, "error", err)
		return nil, nil
	}

	labels := decodeCollection[domain.Label](entries[labelsKey], v, logger, "labels")
	cards := decodeCollection[domain.Card](entries[cardsKey], v, logger, "cards")
	return labels, cards
}

// decodeCollection parses one legacy value. A parse error or any invalid
// element drops the whole collection; partial legacy data is worse than
// none.
func decodeCollection[T any](raw string, v *validation.Validator, logger *slog.Logger, kind string) []T {
	if raw == "" {
		return nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Warn("legacy collection is not valid JSON, ignoring", "kind", kind, "error", err)
		return nil
	}

	for i := range items {
		if err := v.Validate(&items[i]); err != nil {
			logger.Warn("legacy collection failed validation, ignoring", "kind", kind, "error", err)
			return nil
		}
	}
	return items
}
