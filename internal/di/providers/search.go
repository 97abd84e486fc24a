package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/config"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/logger"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/search"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
)

// SearchIndexHandle wraps the note index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve note index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexPath := cfg.Search.IndexPath
	if indexPath == "" {
		indexPath = filepath.Join(cfg.Data.BasePath, "index", "notes")
	}

	index, err := search.NewIndex(search.Options{
		DataPath: indexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Note index initialized", "path", indexPath, "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// TriggerNoteReindexIfNeeded rebuilds the note index when it is empty but the
// mirror holds notes, e.g. after an index version bump wiped it on startup.
// Should be called after all services are wired.
func TriggerNoteReindexIfNeeded(i do.Injector) {
	syncService := do.MustInvoke[*service.SyncService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	notes, err := storeHandle.ListNotes(ctx)
	if err != nil || len(notes) == 0 {
		return
	}

	log.Info("Note index is empty but notes exist, triggering initial reindex",
		"note_count", len(notes),
	)

	go func() {
		indexed, err := syncService.ReindexAll(context.Background())
		if err != nil {
			log.Error("Initial note reindex failed", "error", err)
			return
		}
		log.Info("Initial note reindex completed", "documents", indexed)
	}()
}
