package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/knowdeckapp/knowdeck/internal/backup"
	"github.com/knowdeckapp/knowdeck/internal/config"
	"github.com/knowdeckapp/knowdeck/internal/deck"
	"github.com/knowdeckapp/knowdeck/internal/legacy"
	"github.com/knowdeckapp/knowdeck/internal/logger"
	"github.com/knowdeckapp/knowdeck/internal/store"
	"github.com/knowdeckapp/knowdeck/internal/validation"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the durable bucket store. The underlying database
// is opened lazily on first access, so construction never fails on a
// missing or locked data directory.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.DatabasePath()
	s := store.New(dbPath, log.Logger)

	log.Debug("Store configured", "path", dbPath)

	return &StoreHandle{Store: s}, nil
}

// ProvideBackupService provides the backup file writer.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(cfg.Backup.Path, log.Logger), nil
}

// DeckHandle wraps the deck with shutdown capability so pending bucket
// writes are flushed on exit.
type DeckHandle struct {
	*deck.Deck
}

// Shutdown implements do.Shutdownable.
func (h *DeckHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideDeck provides the initialized domain store. Initialization runs
// the one-shot legacy migration and loads both buckets into memory.
func ProvideDeck(i do.Injector) (*DeckHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	backups := do.MustInvoke[*backup.Service](i)
	v := do.MustInvoke[*validation.Validator](i)

	legacyPath := filepath.Join(cfg.Storage.BasePath, legacy.FileName)
	d := deck.New(storeHandle.Store, backups, v, legacyPath, log.Logger)
	d.Initialize(context.Background())

	return &DeckHandle{Deck: d}, nil
}
