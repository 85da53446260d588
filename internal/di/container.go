// Package di provides dependency injection configuration for the PressMap server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pressmapapp/pressmap-server/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Content tooling
	do.Provide(injector, providers.ProvideExtractor)

	// Business services
	do.Provide(injector, providers.ProvideBackupService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideLinkService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideGraphService)
	do.Provide(injector, providers.ProvideAnalysisService)
	do.Provide(injector, providers.ProvideTaxonomyService)
	do.Provide(injector, providers.ProvideCleanupService)
	do.Provide(injector, providers.ProvideExportService)
	do.Provide(injector, providers.ProvideMediaService)
	do.Provide(injector, providers.ProvidePostService)

	// Workers
	do.Provide(injector, providers.ProvideInboxWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}
