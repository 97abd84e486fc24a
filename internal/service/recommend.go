package service

import (
	"context"
	"log/slog"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/recommend"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// RecommendedItem is a similar item with its ranking data.
type RecommendedItem struct {
	Item       *domain.Item `json:"item"`
	Similarity float64      `json:"similarity"`
	SharedTags int          `json:"sharedTags"`
}

// RecommendService answers similar-item requests.
type RecommendService struct {
	engine *recommend.Engine
	store  store.Store
	logger *slog.Logger
}

// NewRecommendService creates a new recommendation service.
func NewRecommendService(e *recommend.Engine, s store.Store, logger *slog.Logger) *RecommendService {
	return &RecommendService{
		engine: e,
		store:  s,
		logger: logger,
	}
}

// Recommend scores similar items and hydrates them, preserving the
// similarity ranking. An unknown item id yields an empty list.
func (s *RecommendService) Recommend(ctx context.Context, itemID int64, excludeGroupIDs []int64) ([]RecommendedItem, error) {
	scored, err := s.engine.Recommend(ctx, itemID, excludeGroupIDs)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return []RecommendedItem{}, nil
	}

	ids := make([]int64, len(scored))
	for i, sc := range scored {
		ids[i] = sc.ItemID
	}
	items, err := s.store.ItemsByIDsOrdered(ctx, ids, len(ids), 0)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	out := make([]RecommendedItem, 0, len(scored))
	for _, sc := range scored {
		item, ok := byID[sc.ItemID]
		if !ok {
			continue
		}
		out = append(out, RecommendedItem{
			Item:       item,
			Similarity: sc.Similarity,
			SharedTags: sc.SharedTags,
		})
	}
	return out, nil
}
