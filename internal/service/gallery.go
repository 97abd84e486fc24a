// Package service glues the query compiler, set executor, facet engine,
// note search, and recommender into the operations the API layer exposes.
package service

import (
	"context"
	"log/slog"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/engine"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/query"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// Pagination bounds for item search.
const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// SearchItemsResult is one page of matching items plus the totals and
// wildcard resolution info the UI renders.
type SearchItemsResult struct {
	Items             []*domain.Item              `json:"items"`
	TotalCount        int                         `json:"totalCount"`
	TotalPages        int                         `json:"totalPages"`
	Page              int                         `json:"page"`
	PageSize          int                         `json:"pageSize"`
	ResolvedWildcards []domain.WildcardResolution `json:"resolvedWildcards"`
}

// GalleryService answers item search requests.
type GalleryService struct {
	compiler *query.Compiler
	executor *engine.Executor
	store    store.Store
	logger   *slog.Logger
}

// NewGalleryService creates a new gallery service.
func NewGalleryService(c *query.Compiler, e *engine.Executor, s store.Store, logger *slog.Logger) *GalleryService {
	return &GalleryService{
		compiler: c,
		executor: e,
		store:    s,
		logger:   logger,
	}
}

// SearchItems compiles the tag expression, resolves the matching set, and
// returns the requested page. An expression that resolves to nothing is a
// normal empty result; the item table is never touched for it.
func (s *GalleryService) SearchItems(ctx context.Context, expression, noteQuery string, page, pageSize int) (*SearchItemsResult, error) {
	page, pageSize = clampPage(page, pageSize)

	plan, err := s.compiler.Compile(ctx, expression, noteQuery)
	if err != nil {
		return nil, err
	}

	result := &SearchItemsResult{
		Items:             []*domain.Item{},
		Page:              page,
		PageSize:          pageSize,
		ResolvedWildcards: plan.ResolvedWildcards,
	}
	if result.ResolvedWildcards == nil {
		result.ResolvedWildcards = []domain.WildcardResolution{}
	}

	ids, err := s.executor.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	result.TotalCount = len(ids)
	result.TotalPages = (len(ids) + pageSize - 1) / pageSize

	items, err := s.store.ItemsByIDsOrdered(ctx, ids, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	result.Items = items

	s.logger.Debug("item search",
		"expression", expression,
		"matches", len(ids),
		"page", page,
	)
	return result, nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
