package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/config"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/logger"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/watcher"
)

// BlacklistWatcherHandle wraps the blacklist file watcher with Shutdownable.
// Watcher is nil when watching is disabled.
type BlacklistWatcherHandle struct {
	*watcher.Watcher
}

// Shutdown implements do.Shutdownable.
func (h *BlacklistWatcherHandle) Shutdown() error {
	if h.Watcher != nil {
		return h.Stop()
	}
	return nil
}

// ProvideBlacklistWatcher provides the blacklist file watcher. Changes to the
// pattern file reload the blacklist and clear every cache.
func ProvideBlacklistWatcher(i do.Injector) (*BlacklistWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Blacklist.Path == "" || !cfg.Blacklist.Watch {
		return &BlacklistWatcherHandle{Watcher: nil}, nil
	}

	syncService := do.MustInvoke[*service.SyncService](i)

	w, err := watcher.New(cfg.Blacklist.Path, func(ctx context.Context) error {
		return syncService.ReloadBlacklist(ctx)
	}, watcher.Options{}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Blacklist watcher started", "path", cfg.Blacklist.Path)

	return &BlacklistWatcherHandle{Watcher: w}, nil
}
