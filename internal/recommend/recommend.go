// Package recommend scores tag-overlap similarity between items.
package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// Defaults for the similarity tuning knobs.
const (
	DefaultCeiling   = 1000
	DefaultThreshold = 0.15
	DefaultLimit     = 12
)

// Scored is one recommended item with its similarity evidence.
type Scored struct {
	ItemID     int64   `json:"id"`
	Similarity float64 `json:"similarity"`
	SharedTags int     `json:"sharedTags"`
}

// Options tunes the engine.
type Options struct {
	// Ceiling excludes tags with item-count above it from both sides of
	// the similarity ratio; over-common tags carry no signal.
	Ceiling int
	// Threshold is the minimum similarity kept.
	Threshold float64
	// Limit caps the result count.
	Limit int
}

// Engine computes Jaccard similarity over discriminating tags.
type Engine struct {
	store  store.Store
	opts   Options
	logger *slog.Logger
}

// New creates a recommendation engine.
func New(s store.Store, opts Options, logger *slog.Logger) *Engine {
	if opts.Ceiling <= 0 {
		opts.Ceiling = DefaultCeiling
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &Engine{store: s, opts: opts, logger: logger}
}

// Recommend scores every item sharing at least one discriminating tag with
// the source item and returns the top matches.
//
// Similarity is |shared| / (|src| + |candidate| - |shared|) counted over
// discriminating tags only. Kept results satisfy threshold <= sim < 1.0;
// exact duplicates add no discovery value. Items in any of the excluded
// groups never appear. A source with no discriminating tags, including a
// nonexistent item id, yields an empty list rather than an error.
func (e *Engine) Recommend(ctx context.Context, itemID int64, excludeGroupIDs []int64) ([]Scored, error) {
	candidates, srcCount, err := e.store.RecommendationCandidates(ctx, itemID, e.opts.Ceiling, excludeGroupIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "recommendation candidates")
	}
	if srcCount == 0 {
		return []Scored{}, nil
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ItemID == itemID {
			continue
		}
		union := srcCount + c.TagCount - c.SharedCount
		if union <= 0 {
			continue
		}
		sim := float64(c.SharedCount) / float64(union)
		if sim < e.opts.Threshold || sim >= 1.0 {
			continue
		}
		scored = append(scored, Scored{
			ItemID:     c.ItemID,
			Similarity: sim,
			SharedTags: c.SharedCount,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.SharedTags != b.SharedTags {
			return a.SharedTags > b.SharedTags
		}
		return a.ItemID > b.ItemID
	})

	if len(scored) > e.opts.Limit {
		scored = scored[:e.opts.Limit]
	}

	e.logger.Debug("recommendations computed",
		slog.Int64("item", itemID),
		slog.Int("candidates", len(candidates)),
		slog.Int("kept", len(scored)))
	return scored, nil
}
