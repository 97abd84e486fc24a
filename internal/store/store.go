// Package store defines the persistence contract for the gallery mirror.
// The authoritative data lives in the external tagging store; this layer
// holds the local relational mirror the search and recommendation engines
// query.
package store

import (
	"context"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

// FacetScope narrows facet candidate tags.
type FacetScope struct {
	Text     string             // substring filter on tag name, already normalized
	Category domain.TagCategory // empty means all categories
	Limit    int
}

// TagCount is a candidate tag with its co-occurrence count over a matching set.
type TagCount struct {
	Tag   domain.Tag
	Count int
}

// Candidate is a recommendation candidate: an item sharing at least one
// discriminating tag with the source item.
type Candidate struct {
	ItemID      int64
	SharedCount int // shared discriminating tags with the source
	TagCount    int // candidate's own discriminating tag count
}

// Store is the persistence interface consumed by the engines and services.
type Store interface {
	// Items.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	ItemsByIDsOrdered(ctx context.Context, ids []int64, limit, offset int) ([]*domain.Item, error)
	UpsertItem(ctx context.Context, item *domain.Item) error
	SetItemHidden(ctx context.Context, id int64, hidden bool) error

	// Tags.
	TagsByName(ctx context.Context, name string) ([]*domain.Tag, error)
	TagsByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error)
	SearchTagsByPattern(ctx context.Context, likePattern string, limit int) ([]*domain.Tag, bool, error)
	TopTagsByCategory(ctx context.Context, category domain.TagCategory, limit int) ([]*domain.Tag, error)
	UpsertTag(ctx context.Context, tag *domain.Tag) error
	RefreshTagCounts(ctx context.Context) error

	// Item-tag associations. Both access patterns are indexed.
	SetItemTags(ctx context.Context, itemID int64, tagIDs []int64) error
	TagIDsForItem(ctx context.Context, itemID int64) ([]int64, error)

	// Native set-producing operations for the set executor. Results only
	// ever contain non-hidden items.
	ItemIDsWithAnyTag(ctx context.Context, tagIDs []int64) ([]int64, error)
	ItemIDsWithMeta(ctx context.Context, meta domain.MetaName) ([]int64, error)
	AllItemIDs(ctx context.Context) ([]int64, error)
	VisibleItemIDs(ctx context.Context, ids []int64) ([]int64, error)

	// Facets.
	TagCooccurrence(ctx context.Context, itemIDs []int64, scope FacetScope) ([]TagCount, error)

	// Groups.
	UpsertGroup(ctx context.Context, g *domain.Group) error
	AddItemToGroup(ctx context.Context, groupID, itemID int64) error
	GroupIDsForItem(ctx context.Context, itemID int64) ([]int64, error)
	ItemIDsInGroup(ctx context.Context, groupID int64) ([]int64, error)

	// Notes. Listing feeds the full-text index.
	UpsertNote(ctx context.Context, n *domain.Note) error
	ListNotes(ctx context.Context) ([]*domain.Note, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)

	// Recommendations. Candidates share at least one discriminating tag
	// (item_count <= ceiling) with the source item.
	RecommendationCandidates(ctx context.Context, itemID int64, ceiling int, excludeGroupIDs []int64) ([]Candidate, int, error)

	Close() error
}
