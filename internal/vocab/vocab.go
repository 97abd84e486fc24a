// Package vocab resolves query tokens against the persisted tag vocabulary.
// Resolution results are cached; the caches join the shared invalidation
// registry so a library sync clears them wholesale.
package vocab

import (
	"context"
	"log/slog"
	"time"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/normalize"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// Expansion is a resolved wildcard: the matching tags plus the resolution
// report surfaced to API callers.
type Expansion struct {
	Tags       []*domain.Tag
	Resolution domain.WildcardResolution
}

// Options tunes the vocabulary caches and wildcard expansion.
type Options struct {
	WildcardLimit int           // max tags one wildcard may expand to
	CacheTTL      time.Duration // TTL for both name and wildcard caches
	CacheEntries  int           // max entries per cache
}

// Vocabulary is the tag lookup layer between the query compiler and the store.
type Vocabulary struct {
	store     store.Store
	blacklist *blacklist.Blacklist
	logger    *slog.Logger

	wildcardLimit int

	names     *cache.Cache[string, []*domain.Tag]
	wildcards *cache.Cache[string, Expansion]
}

// New creates a vocabulary and registers its caches for coarse invalidation.
func New(s store.Store, bl *blacklist.Blacklist, registry *cache.Registry, opts Options, logger *slog.Logger) *Vocabulary {
	if opts.WildcardLimit <= 0 {
		opts.WildcardLimit = 500
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}

	v := &Vocabulary{
		store:         s,
		blacklist:     bl,
		logger:        logger,
		wildcardLimit: opts.WildcardLimit,
		names:         cache.New[string, []*domain.Tag](opts.CacheEntries, opts.CacheTTL),
		wildcards:     cache.New[string, Expansion](opts.CacheEntries, opts.CacheTTL),
	}
	registry.Register(v.names)
	registry.Register(v.wildcards)
	return v
}

// ResolveName returns every persisted tag carrying the normalized name,
// one per category, most popular first. A name that resolves to nothing
// returns an empty slice, not an error.
func (v *Vocabulary) ResolveName(ctx context.Context, name string) ([]*domain.Tag, error) {
	if tags, ok := v.names.Get(name); ok {
		return tags, nil
	}

	tags, err := v.store.TagsByName(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "resolve tag name")
	}

	v.names.Put(name, tags)
	return tags, nil
}

// ResolveWildcard expands a validated wildcard pattern against the
// vocabulary. Expansion is capped; when more tags match than the cap
// allows the result is flagged truncated and holds the most popular
// matches. Blacklisted names never appear in an expansion.
func (v *Vocabulary) ResolveWildcard(ctx context.Context, pattern string) (Expansion, error) {
	if exp, ok := v.wildcards.Get(pattern); ok {
		return exp, nil
	}

	like := normalize.GlobToLike(pattern)
	tags, truncated, err := v.store.SearchTagsByPattern(ctx, like, v.wildcardLimit)
	if err != nil {
		return Expansion{}, errors.Wrap(err, errors.CodeInternal, "expand wildcard")
	}

	kept := make([]*domain.Tag, 0, len(tags))
	names := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if v.blacklist.IsBlacklisted(t.Name) {
			continue
		}
		kept = append(kept, t)
		if _, dup := seen[t.Name]; !dup {
			seen[t.Name] = struct{}{}
			names = append(names, t.Name)
		}
	}

	exp := Expansion{
		Tags: kept,
		Resolution: domain.WildcardResolution{
			Pattern:    pattern,
			Names:      names,
			Truncated:  truncated,
			MatchCount: len(names),
		},
	}

	if truncated {
		v.logger.Debug("wildcard expansion truncated",
			slog.String("pattern", pattern),
			slog.Int("limit", v.wildcardLimit))
	}

	v.wildcards.Put(pattern, exp)
	return exp, nil
}

// WildcardLimit returns the active expansion cap.
func (v *Vocabulary) WildcardLimit() int {
	return v.wildcardLimit
}
