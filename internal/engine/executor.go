// Package engine evaluates compiled plans against the item-tag relation.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// NoteMatcher resolves a free-text note query to the matching item ids.
// Satisfied by the full-text search index.
type NoteMatcher interface {
	MatchingItemIDs(ctx context.Context, query string) ([]int64, error)
}

// Options tunes the executor's result cache.
type Options struct {
	CacheTTL     time.Duration
	CacheEntries int
}

// Executor computes the matching item set for a plan. Results are cached by
// normalized plan key; the cache joins the shared invalidation registry.
type Executor struct {
	store   store.Store
	notes   NoteMatcher
	results *cache.Cache[string, []int64]
	logger  *slog.Logger
}

// New creates an executor and registers its result cache.
func New(s store.Store, notes NoteMatcher, registry *cache.Registry, opts Options, logger *slog.Logger) *Executor {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	e := &Executor{
		store:   s,
		notes:   notes,
		results: cache.New[string, []int64](opts.CacheEntries, opts.CacheTTL),
		logger:  logger,
	}
	registry.Register(e.results)
	return e
}

// Execute returns the sorted ids of every non-hidden item matching the plan.
//
// An empty plan yields an empty set: a blank query means "no criteria", not
// "all items". An unsatisfiable plan yields an empty set without touching
// the store.
func (e *Executor) Execute(ctx context.Context, plan *domain.Plan) ([]int64, error) {
	if plan.Unsatisfiable || plan.Empty() {
		return []int64{}, nil
	}

	key := plan.Key()
	if ids, ok := e.results.Get(key); ok {
		return ids, nil
	}

	ids, err := e.evaluate(ctx, Lower(plan))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "execute plan")
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	e.results.Put(key, ids)
	e.logger.Debug("plan executed",
		slog.String("key", key),
		slog.Int("matches", len(ids)))
	return ids, nil
}

// evaluate walks the expression tree. Children of n-ary nodes are fetched
// concurrently; each leaf is a single set-producing store operation.
func (e *Executor) evaluate(ctx context.Context, expr Expr) ([]int64, error) {
	switch n := expr.(type) {
	case TagLeaf:
		if len(n.TagIDs) == 0 {
			return e.store.AllItemIDs(ctx)
		}
		return e.store.ItemIDsWithAnyTag(ctx, n.TagIDs)

	case MetaLeaf:
		return e.store.ItemIDsWithMeta(ctx, n.Meta)

	case NoteLeaf:
		ids, err := e.notes.MatchingItemIDs(ctx, n.Query)
		if err != nil || len(ids) == 0 {
			return ids, err
		}
		// The index carries notes of hidden items; the store does not
		// surface them, so the match set is filtered here.
		return e.store.VisibleItemIDs(ctx, ids)

	case Intersect:
		sets, err := e.evaluateAll(ctx, n.Children)
		if err != nil {
			return nil, err
		}
		return intersectAll(sets), nil

	case Difference:
		children := append([]Expr{n.Base}, n.Subtract...)
		sets, err := e.evaluateAll(ctx, children)
		if err != nil {
			return nil, err
		}
		return subtract(sets[0], sets[1:]), nil

	default:
		return nil, errors.Internalf("unknown expression node %T", expr)
	}
}

// evaluateAll fetches every child set concurrently.
func (e *Executor) evaluateAll(ctx context.Context, children []Expr) ([][]int64, error) {
	sets := make([][]int64, len(children))
	g, gctx := errgroup.WithContext(ctx)
	for i, child := range children {
		g.Go(func() error {
			ids, err := e.evaluate(gctx, child)
			if err != nil {
				return err
			}
			sets[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

// intersectAll intersects the sets smallest-first, so the working set never
// exceeds the smallest input and drained intersections bail out early.
func intersectAll(sets [][]int64) []int64 {
	if len(sets) == 0 {
		return []int64{}
	}
	sort.Slice(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })

	current := make(map[int64]struct{}, len(sets[0]))
	for _, id := range sets[0] {
		current[id] = struct{}{}
	}

	for _, set := range sets[1:] {
		if len(current) == 0 {
			return []int64{}
		}
		next := make(map[int64]struct{}, len(current))
		for _, id := range set {
			if _, ok := current[id]; ok {
				next[id] = struct{}{}
			}
		}
		current = next
	}

	out := make([]int64, 0, len(current))
	for id := range current {
		out = append(out, id)
	}
	return out
}

// subtract removes every id present in any of the subtrahend sets from base.
func subtract(base []int64, subtrahends [][]int64) []int64 {
	excluded := make(map[int64]struct{})
	for _, set := range subtrahends {
		for _, id := range set {
			excluded[id] = struct{}{}
		}
	}

	out := make([]int64, 0, len(base))
	for _, id := range base {
		if _, ok := excluded[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
