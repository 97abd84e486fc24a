package providers

import (
	"github.com/samber/do/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/config"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/engine"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/facet"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/logger"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/query"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/recommend"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/vocab"
)

// ProvideCacheRegistry provides the shared cache invalidation registry.
func ProvideCacheRegistry(i do.Injector) (*cache.Registry, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return cache.NewRegistry(log.Logger), nil
}

// ProvideBlacklist provides the tag blacklist. An empty path yields a
// blacklist that never matches.
func ProvideBlacklist(i do.Injector) (*blacklist.Blacklist, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	bl := blacklist.New(cfg.Blacklist.Path, log.Logger)
	if err := bl.Load(); err != nil {
		return nil, err
	}

	if cfg.Blacklist.Path != "" {
		log.Info("Tag blacklist loaded", "path", cfg.Blacklist.Path, "entries", bl.Len())
	}
	return bl, nil
}

// ProvideVocabulary provides the tag vocabulary cache.
func ProvideVocabulary(i do.Injector) (*vocab.Vocabulary, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bl := do.MustInvoke[*blacklist.Blacklist](i)
	registry := do.MustInvoke[*cache.Registry](i)
	log := do.MustInvoke[*logger.Logger](i)

	return vocab.New(storeHandle.Store, bl, registry, vocab.Options{
		WildcardLimit: cfg.Engine.WildcardLimit,
		CacheTTL:      cfg.Cache.VocabTTL,
		CacheEntries:  cfg.Cache.VocabEntries,
	}, log.Logger), nil
}

// ProvideQueryCompiler provides the tag expression compiler.
func ProvideQueryCompiler(i do.Injector) (*query.Compiler, error) {
	voc := do.MustInvoke[*vocab.Vocabulary](i)
	bl := do.MustInvoke[*blacklist.Blacklist](i)
	log := do.MustInvoke[*logger.Logger](i)

	return query.New(voc, bl, log.Logger), nil
}

// ProvideExecutor provides the set executor.
func ProvideExecutor(i do.Injector) (*engine.Executor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	registry := do.MustInvoke[*cache.Registry](i)
	log := do.MustInvoke[*logger.Logger](i)

	return engine.New(storeHandle.Store, indexHandle.Index, registry, engine.Options{
		CacheTTL:     cfg.Cache.ResultTTL,
		CacheEntries: cfg.Cache.ResultEntries,
	}, log.Logger), nil
}

// ProvideFacetEngine provides the facet engine.
func ProvideFacetEngine(i do.Injector) (*facet.Engine, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bl := do.MustInvoke[*blacklist.Blacklist](i)
	log := do.MustInvoke[*logger.Logger](i)

	return facet.New(storeHandle.Store, bl, log.Logger), nil
}

// ProvideRecommendEngine provides the similarity engine.
func ProvideRecommendEngine(i do.Injector) (*recommend.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return recommend.New(storeHandle.Store, recommend.Options{
		Ceiling:   cfg.Engine.RecommendCeiling,
		Threshold: cfg.Engine.RecommendThreshold,
		Limit:     cfg.Engine.RecommendLimit,
	}, log.Logger), nil
}

// ProvideGalleryService provides the item search service.
func ProvideGalleryService(i do.Injector) (*service.GalleryService, error) {
	compiler := do.MustInvoke[*query.Compiler](i)
	exec := do.MustInvoke[*engine.Executor](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGalleryService(compiler, exec, storeHandle.Store, log.Logger), nil
}

// ProvideFacetService provides the facet service.
func ProvideFacetService(i do.Injector) (*service.FacetService, error) {
	compiler := do.MustInvoke[*query.Compiler](i)
	exec := do.MustInvoke[*engine.Executor](i)
	facets := do.MustInvoke[*facet.Engine](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFacetService(compiler, exec, facets, storeHandle.Store, log.Logger), nil
}

// ProvideNoteSearchService provides the note full-text search service.
func ProvideNoteSearchService(i do.Injector) (*service.NoteSearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNoteSearchService(indexHandle.Index, cfg.Search.PageSize, log.Logger), nil
}

// ProvideRecommendService provides the recommendation service.
func ProvideRecommendService(i do.Injector) (*service.RecommendService, error) {
	rec := do.MustInvoke[*recommend.Engine](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendService(rec, storeHandle.Store, log.Logger), nil
}

// ProvideSyncService provides the sync-completion service.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	bl := do.MustInvoke[*blacklist.Blacklist](i)
	registry := do.MustInvoke[*cache.Registry](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(storeHandle.Store, indexHandle.Index, bl, registry, log.Logger), nil
}
