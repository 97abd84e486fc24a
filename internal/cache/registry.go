package cache

import (
	"log/slog"
	"sync"
)

// Invalidatable is the contract every cache in the fabric satisfies.
type Invalidatable interface {
	InvalidateAll()
}

// Registry tracks every cache in the process so that mutation events can
// clear them all at once. It is injected into the engines that own caches;
// the sync and blacklist subsystems call InvalidateAll on completion events.
type Registry struct {
	mu     sync.Mutex
	caches []Invalidatable
	logger *slog.Logger
}

// NewRegistry creates an empty cache registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a cache to the registry and returns it unchanged, so
// construction sites can register inline.
func (r *Registry) Register(c Invalidatable) Invalidatable {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches = append(r.caches, c)
	return c
}

// InvalidateAll clears every registered cache. Called on library sync
// completion and blacklist edits.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	caches := make([]Invalidatable, len(r.caches))
	copy(caches, r.caches)
	r.mu.Unlock()

	for _, c := range caches {
		c.InvalidateAll()
	}
	if r.logger != nil {
		r.logger.Info("invalidated all caches", "count", len(caches))
	}
}
