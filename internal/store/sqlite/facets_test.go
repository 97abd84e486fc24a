package sqlite

import (
	"context"
	"testing"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

func TestTagCooccurrence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedItem(t, s, 1)
	seedItem(t, s, 2)
	seedItem(t, s, 3)
	seedTag(t, s, 10, "red_hair", domain.CategoryGeneral, 0)
	seedTag(t, s, 11, "blue_eyes", domain.CategoryGeneral, 0)
	seedTag(t, s, 12, "alice", domain.CategorySubject, 0)
	tagItems(t, s, 10, 1, 2, 3)
	tagItems(t, s, 11, 1, 2)
	tagItems(t, s, 12, 1)

	counts, err := s.TagCooccurrence(ctx, []int64{1, 2, 3}, store.FacetScope{Limit: 10})
	if err != nil {
		t.Fatalf("TagCooccurrence: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("got %d counts, want 3", len(counts))
	}
	// Ordered by count descending.
	if counts[0].Tag.ID != 10 || counts[0].Count != 3 {
		t.Errorf("first: got tag %d count %d, want 10/3", counts[0].Tag.ID, counts[0].Count)
	}
	if counts[1].Tag.ID != 11 || counts[1].Count != 2 {
		t.Errorf("second: got tag %d count %d, want 11/2", counts[1].Tag.ID, counts[1].Count)
	}

	// Counts never exceed the matching-set size.
	for _, c := range counts {
		if c.Count > 3 {
			t.Errorf("count %d for %s exceeds matching set size", c.Count, c.Tag.Name)
		}
	}
}

func TestTagCooccurrenceScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedItem(t, s, 1)
	seedItem(t, s, 2)
	seedTag(t, s, 10, "red_hair", domain.CategoryGeneral, 0)
	seedTag(t, s, 11, "red_eyes", domain.CategoryGeneral, 0)
	seedTag(t, s, 12, "alice", domain.CategorySubject, 0)
	tagItems(t, s, 10, 1, 2)
	tagItems(t, s, 11, 1)
	tagItems(t, s, 12, 1, 2)

	// Text filter.
	counts, err := s.TagCooccurrence(ctx, []int64{1, 2}, store.FacetScope{Text: "red", Limit: 10})
	if err != nil {
		t.Fatalf("TagCooccurrence text: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("text filter: got %d, want 2", len(counts))
	}

	// Category filter.
	counts, err = s.TagCooccurrence(ctx, []int64{1, 2}, store.FacetScope{Category: domain.CategorySubject, Limit: 10})
	if err != nil {
		t.Fatalf("TagCooccurrence category: %v", err)
	}
	if len(counts) != 1 || counts[0].Tag.Name != "alice" {
		t.Fatalf("category filter: got %v", counts)
	}

	// Empty matching set.
	counts, err = s.TagCooccurrence(ctx, nil, store.FacetScope{Limit: 10})
	if err != nil {
		t.Fatalf("TagCooccurrence empty: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("empty set: got %d counts", len(counts))
	}
}
