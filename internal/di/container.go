// Package di provides dependency injection configuration for the KnowDeck app.
package di

import (
	"github.com/samber/do/v2"

	"github.com/knowdeckapp/knowdeck/internal/backup"
	"github.com/knowdeckapp/knowdeck/internal/config"
	"github.com/knowdeckapp/knowdeck/internal/di/providers"
	"github.com/knowdeckapp/knowdeck/internal/logger"
	"github.com/knowdeckapp/knowdeck/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBackupService)

	// Domain store
	do.Provide(injector, providers.ProvideDeck)

	return injector
}

// Bootstrap initializes all services and returns once the deck is loaded.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*providers.DeckHandle](injector)

	return nil
}
