// Package facet computes tag co-occurrence suggestions for progressive
// query narrowing.
package facet

import (
	"context"
	"log/slog"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/normalize"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// DefaultLimit bounds suggestions when the caller does not specify a page size.
const DefaultLimit = 25

// Suggestion is one candidate tag for narrowing the current plan.
// Count is how many items in the matching set carry the tag;
// RemainingCount is how many would drop out if it were added.
type Suggestion struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	Category       domain.TagCategory `json:"category"`
	Count          int                `json:"count"`
	RemainingCount int                `json:"remainingCount"`
}

// Scope narrows which candidate tags are considered.
type Scope struct {
	Text     string
	Category domain.TagCategory
	Limit    int
}

// Engine produces facet suggestions for a plan's matching set.
type Engine struct {
	store     store.Store
	blacklist *blacklist.Blacklist
	logger    *slog.Logger
}

// New creates a facet engine.
func New(s store.Store, bl *blacklist.Blacklist, logger *slog.Logger) *Engine {
	return &Engine{store: s, blacklist: bl, logger: logger}
}

// Suggest computes candidate tags for the plan and its matching set.
//
// Tags already selected by the plan are excluded, by id and by name across
// every category of that name. Blacklisted tags never surface. When the
// plan is non-empty and no text filter is active, tags carried by every
// matching item are omitted: adding them cannot narrow anything.
func (e *Engine) Suggest(ctx context.Context, plan *domain.Plan, matchingIDs []int64, scope Scope) ([]Suggestion, error) {
	if scope.Limit <= 0 {
		scope.Limit = DefaultLimit
	}
	scope.Text = normalize.Name(scope.Text)

	if plan.Empty() && scope.Text == "" {
		return e.topTagSample(ctx, scope)
	}

	selectedIDs, selectedNames, err := e.selectedTags(ctx, plan)
	if err != nil {
		return nil, err
	}

	// Fetch with margin: plan tags, blacklisted tags, and zero-remaining
	// tags are filtered after counting.
	fetch := store.FacetScope{
		Text:     scope.Text,
		Category: scope.Category,
		Limit:    scope.Limit*3 + len(selectedIDs),
	}
	candidates, err := e.store.TagCooccurrence(ctx, matchingIDs, fetch)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "facet counts")
	}

	omitSaturated := scope.Text == "" && !plan.Empty()
	matchSize := len(matchingIDs)

	out := make([]Suggestion, 0, scope.Limit)
	for _, c := range candidates {
		if len(out) == scope.Limit {
			break
		}
		if _, ok := selectedIDs[c.Tag.ID]; ok {
			continue
		}
		if _, ok := selectedNames[c.Tag.Name]; ok {
			continue
		}
		if e.blacklist.IsBlacklisted(c.Tag.Name) {
			continue
		}
		remaining := matchSize - c.Count
		if omitSaturated && remaining == 0 {
			continue
		}
		out = append(out, Suggestion{
			ID:             c.Tag.ID,
			Name:           c.Tag.Name,
			Category:       c.Tag.Category,
			Count:          c.Count,
			RemainingCount: remaining,
		})
	}
	return out, nil
}

// selectedTags resolves the plan's tag ids to an id set and a name set, so
// suggestions can be suppressed across every category of a selected name.
func (e *Engine) selectedTags(ctx context.Context, plan *domain.Plan) (map[int64]struct{}, map[string]struct{}, error) {
	ids := make(map[int64]struct{}, len(plan.SelectedTagIDs))
	names := make(map[string]struct{}, len(plan.SelectedTagIDs))
	if len(plan.SelectedTagIDs) == 0 {
		return ids, names, nil
	}

	tags, err := e.store.TagsByIDs(ctx, plan.SelectedTagIDs)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "resolve selected tags")
	}
	for _, t := range tags {
		ids[t.ID] = struct{}{}
		names[t.Name] = struct{}{}
	}
	return ids, names, nil
}

// topTagSample serves the blank-query facet panel: a balanced sample of the
// most-used tags per category, so low-volume categories are not crowded out
// by the largest one. Counts fall back to global item counts since there is
// no matching set to count against.
func (e *Engine) topTagSample(ctx context.Context, scope Scope) ([]Suggestion, error) {
	categories := domain.AllCategories
	if scope.Category != "" {
		categories = []domain.TagCategory{scope.Category}
	}

	perCategory := scope.Limit / len(categories)
	if perCategory < 1 {
		perCategory = 1
	}

	out := make([]Suggestion, 0, scope.Limit)
	for _, cat := range categories {
		tags, err := e.store.TopTagsByCategory(ctx, cat, perCategory*2)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "top tags")
		}
		kept := 0
		for _, t := range tags {
			if kept == perCategory || len(out) == scope.Limit {
				break
			}
			if e.blacklist.IsBlacklisted(t.Name) {
				continue
			}
			out = append(out, Suggestion{
				ID:       t.ID,
				Name:     t.Name,
				Category: t.Category,
				Count:    t.ItemCount,
			})
			kept++
		}
	}
	return out, nil
}
