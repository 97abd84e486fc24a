package service

import (
	"context"
	"log/slog"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/engine"
	domainerrors "github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/facet"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/query"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// FacetTagsResult carries facet suggestions for progressive narrowing.
type FacetTagsResult struct {
	Tags          []facet.Suggestion `json:"tags"`
	MatchingCount int                `json:"matchingCount"`
	SelectedTags  []*domain.Tag      `json:"selectedTags"`
}

// FacetService answers facet suggestion requests.
type FacetService struct {
	compiler *query.Compiler
	executor *engine.Executor
	facets   *facet.Engine
	store    store.Store
	logger   *slog.Logger
}

// NewFacetService creates a new facet service.
func NewFacetService(c *query.Compiler, e *engine.Executor, f *facet.Engine, s store.Store, logger *slog.Logger) *FacetService {
	return &FacetService{
		compiler: c,
		executor: e,
		facets:   f,
		store:    s,
		logger:   logger,
	}
}

// FacetTags compiles the expression, resolves its matching set, and returns
// candidate narrowing tags with co-occurrence counts, plus the tags already
// selected by the expression.
func (s *FacetService) FacetTags(ctx context.Context, expression, category, textFilter string, limit int) (*FacetTagsResult, error) {
	if category != "" && !domain.ValidCategory(domain.TagCategory(category)) {
		return nil, domainerrors.Validationf("unknown tag category %q", category)
	}

	plan, err := s.compiler.Compile(ctx, expression, "")
	if err != nil {
		return nil, err
	}

	ids, err := s.executor.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.facets.Suggest(ctx, plan, ids, facet.Scope{
		Text:     textFilter,
		Category: domain.TagCategory(category),
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	selected := []*domain.Tag{}
	if len(plan.SelectedTagIDs) > 0 {
		selected, err = s.store.TagsByIDs(ctx, plan.SelectedTagIDs)
		if err != nil {
			return nil, err
		}
	}

	return &FacetTagsResult{
		Tags:          suggestions,
		MatchingCount: len(ids),
		SelectedTags:  selected,
	}, nil
}
