package sqlite

import (
	"context"
	"testing"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

func TestRecommendationCandidates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedItem(t, s, 1) // source: tags a, b
	seedItem(t, s, 2) // shares a
	seedItem(t, s, 3) // shares nothing
	seedTag(t, s, 10, "a", domain.CategoryGeneral, 2)
	seedTag(t, s, 11, "b", domain.CategoryGeneral, 1)
	seedTag(t, s, 12, "c", domain.CategoryGeneral, 1)
	tagItems(t, s, 10, 1, 2)
	tagItems(t, s, 11, 1)
	tagItems(t, s, 12, 3)

	candidates, srcCount, err := s.RecommendationCandidates(ctx, 1, 1000, nil)
	if err != nil {
		t.Fatalf("RecommendationCandidates: %v", err)
	}
	if srcCount != 2 {
		t.Errorf("srcCount: got %d, want 2", srcCount)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	c := candidates[0]
	if c.ItemID != 2 || c.SharedCount != 1 || c.TagCount != 1 {
		t.Errorf("candidate: got %+v, want item 2, shared 1, tags 1", c)
	}
}

func TestRecommendationCandidatesCeiling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedItem(t, s, 1)
	seedItem(t, s, 2)
	// Over-common tag: item_count above the ceiling, must not link candidates.
	seedTag(t, s, 10, "too_common", domain.CategoryGeneral, 5000)
	tagItems(t, s, 10, 1, 2)

	candidates, srcCount, err := s.RecommendationCandidates(ctx, 1, 1000, nil)
	if err != nil {
		t.Fatalf("RecommendationCandidates: %v", err)
	}
	if srcCount != 0 {
		t.Errorf("srcCount: got %d, want 0 (all tags over ceiling)", srcCount)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(candidates))
	}
}

func TestRecommendationCandidatesGroupExclusion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedItem(t, s, 1)
	seedItem(t, s, 2)
	seedItem(t, s, 3)
	seedTag(t, s, 10, "a", domain.CategoryGeneral, 3)
	tagItems(t, s, 10, 1, 2, 3)

	// Item 2 is a sibling in group 100.
	if err := s.UpsertGroup(ctx, &domain.Group{ID: 100, Title: "same work"}); err != nil {
		t.Fatalf("UpsertGroup: %v", err)
	}
	if err := s.AddItemToGroup(ctx, 100, 2); err != nil {
		t.Fatalf("AddItemToGroup: %v", err)
	}

	candidates, _, err := s.RecommendationCandidates(ctx, 1, 1000, []int64{100})
	if err != nil {
		t.Fatalf("RecommendationCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ItemID != 3 {
		t.Errorf("got %+v, want only item 3", candidates)
	}
}

func TestRecommendationCandidatesHiddenExcluded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedItem(t, s, 1)
	seedItem(t, s, 2)
	seedTag(t, s, 10, "a", domain.CategoryGeneral, 2)
	tagItems(t, s, 10, 1, 2)

	if err := s.SetItemHidden(ctx, 2, true); err != nil {
		t.Fatalf("SetItemHidden: %v", err)
	}

	candidates, _, err := s.RecommendationCandidates(ctx, 1, 1000, nil)
	if err != nil {
		t.Fatalf("RecommendationCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("hidden candidate returned: %+v", candidates)
	}
}
