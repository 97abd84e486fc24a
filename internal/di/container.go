// Package di provides dependency injection configuration for the Nextbooru server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/auth"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/config"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/di/providers"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/engine"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/facet"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/logger"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/query"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/recommend"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/vocab"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Query layer
	do.Provide(injector, providers.ProvideCacheRegistry)
	do.Provide(injector, providers.ProvideBlacklist)
	do.Provide(injector, providers.ProvideVocabulary)
	do.Provide(injector, providers.ProvideQueryCompiler)
	do.Provide(injector, providers.ProvideExecutor)
	do.Provide(injector, providers.ProvideFacetEngine)
	do.Provide(injector, providers.ProvideRecommendEngine)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideGalleryService)
	do.Provide(injector, providers.ProvideFacetService)
	do.Provide(injector, providers.ProvideNoteSearchService)
	do.Provide(injector, providers.ProvideRecommendService)
	do.Provide(injector, providers.ProvideSyncService)

	// Workers
	do.Provide(injector, providers.ProvideBlacklistWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Query layer
	_ = do.MustInvoke[*cache.Registry](injector)
	_ = do.MustInvoke[*blacklist.Blacklist](injector)
	_ = do.MustInvoke[*vocab.Vocabulary](injector)
	_ = do.MustInvoke[*query.Compiler](injector)
	_ = do.MustInvoke[*engine.Executor](injector)
	_ = do.MustInvoke[*facet.Engine](injector)
	_ = do.MustInvoke[*recommend.Engine](injector)

	// Auth
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.GalleryService](injector)
	_ = do.MustInvoke[*service.FacetService](injector)
	_ = do.MustInvoke[*service.NoteSearchService](injector)
	_ = do.MustInvoke[*service.RecommendService](injector)
	_ = do.MustInvoke[*service.SyncService](injector)

	// Workers
	_ = do.MustInvoke[*providers.BlacklistWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	// Rebuild the note index if it came up empty against a populated mirror
	providers.TriggerNoteReindexIfNeeded(injector)

	return nil
}
