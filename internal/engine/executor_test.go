package engine_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/engine"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store/sqlite"
)

// stubNotes is a NoteMatcher returning a fixed id set per query.
type stubNotes struct {
	matches map[string][]int64
	calls   int
}

func (s *stubNotes) MatchingItemIDs(_ context.Context, query string) ([]int64, error) {
	s.calls++
	return s.matches[query], nil
}

type fixture struct {
	exec     *engine.Executor
	store    *sqlite.Store
	notes    *stubNotes
	registry *cache.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	notes := &stubNotes{matches: map[string][]int64{}}
	registry := cache.NewRegistry(logger)
	exec := engine.New(s, notes, registry, engine.Options{CacheTTL: time.Minute}, logger)

	return &fixture{exec: exec, store: s, notes: notes, registry: registry}
}

func (f *fixture) seedItem(t *testing.T, id int64) {
	t.Helper()
	f.seedItemKind(t, id, domain.MediaImage, 800, 600)
}

func (f *fixture) seedItemKind(t *testing.T, id int64, kind domain.MediaKind, w, h int) {
	t.Helper()
	require.NoError(t, f.store.UpsertItem(context.Background(), &domain.Item{
		ID:         id,
		Hash:       fmt.Sprintf("hash-%016x", id),
		Width:      w,
		Height:     h,
		Kind:       kind,
		ImportedAt: time.Unix(1700000000+id, 0),
	}))
}

func (f *fixture) seedTag(t *testing.T, id int64, name string) {
	t.Helper()
	f.seedTagCat(t, id, name, domain.CategoryGeneral)
}

func (f *fixture) seedTagCat(t *testing.T, id int64, name string, cat domain.TagCategory) {
	t.Helper()
	require.NoError(t, f.store.UpsertTag(context.Background(), &domain.Tag{
		ID: id, Name: name, Category: cat, ItemCount: 1,
	}))
}

func (f *fixture) tagItems(t *testing.T, tagID int64, itemIDs ...int64) {
	t.Helper()
	ctx := context.Background()
	for _, itemID := range itemIDs {
		existing, err := f.store.TagIDsForItem(ctx, itemID)
		require.NoError(t, err)
		require.NoError(t, f.store.SetItemTags(ctx, itemID, append(existing, tagID)))
	}
}

func singlePlan(tagID int64) *domain.Plan {
	return &domain.Plan{IncludeGroups: []domain.ResolvedToken{domain.SingleToken(tagID)}}
}

func TestExecute_SingleTag(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedItem(t, 2)
	f.seedTag(t, 10, "forest")
	f.tagItems(t, 10, 1)

	ids, err := f.exec.Execute(context.Background(), singlePlan(10))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestExecute_Intersection(t *testing.T) {
	f := newFixture(t)
	for i := int64(1); i <= 4; i++ {
		f.seedItem(t, i)
	}
	f.seedTag(t, 10, "forest")
	f.seedTag(t, 11, "river")
	f.tagItems(t, 10, 1, 2, 3)
	f.tagItems(t, 11, 2, 3, 4)

	plan := &domain.Plan{IncludeGroups: []domain.ResolvedToken{
		domain.SingleToken(10),
		domain.SingleToken(11),
	}}
	ids, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)
}

func TestExecute_GroupTokenIsUnion(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedItem(t, 2)
	f.seedItem(t, 3)
	f.seedTagCat(t, 10, "mignon", domain.CategoryCreator)
	f.seedTagCat(t, 11, "mignon", domain.CategoryGeneral)
	f.tagItems(t, 10, 1)
	f.tagItems(t, 11, 2)

	// One ambiguous token: an item matches if it has either id.
	plan := &domain.Plan{IncludeGroups: []domain.ResolvedToken{
		domain.GroupToken([]int64{10, 11}),
	}}
	ids, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestExecute_Exclusion(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedItem(t, 2)
	f.seedTag(t, 10, "forest")
	f.seedTag(t, 11, "cityscape")
	f.tagItems(t, 10, 1, 2)
	f.tagItems(t, 11, 2)

	plan := singlePlan(10)
	plan.ExcludeIDs = []int64{11}
	ids, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestExecute_ExclusionOnly(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedItem(t, 2)
	f.seedItem(t, 3)
	f.seedTag(t, 10, "cityscape")
	f.tagItems(t, 10, 2)

	plan := &domain.Plan{ExcludeIDs: []int64{10}}
	ids, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestExecute_MetaPredicates(t *testing.T) {
	f := newFixture(t)
	f.seedItemKind(t, 1, domain.MediaVideo, 1920, 1080)
	f.seedItemKind(t, 2, domain.MediaImage, 800, 600)
	f.seedItemKind(t, 3, domain.MediaVideo, 320, 240)

	plan := &domain.Plan{
		MetaInclude: []domain.MetaName{domain.MetaVideo},
		MetaExclude: []domain.MetaName{domain.MetaLowRes},
	}
	ids, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestExecute_NoteFilterIntersects(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedItem(t, 2)
	f.seedTag(t, 10, "forest")
	f.tagItems(t, 10, 1, 2)
	f.notes.matches["sunset"] = []int64{2, 99}

	plan := singlePlan(10)
	plan.NoteQuery = "sunset"
	ids, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestExecute_HiddenItemsNeverMatch(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedItem(t, 2)
	f.seedTag(t, 10, "forest")
	f.tagItems(t, 10, 1, 2)
	require.NoError(t, f.store.SetItemHidden(context.Background(), 2, true))

	ids, err := f.exec.Execute(context.Background(), singlePlan(10))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestExecute_NoteOnlyPlanSkipsHiddenItems(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedItem(t, 2)
	require.NoError(t, f.store.SetItemHidden(context.Background(), 1, true))
	// The index still holds the hidden item's note; the matcher returns
	// both ids and the executor drops the hidden one.
	f.notes.matches["secret"] = []int64{1, 2}

	ids, err := f.exec.Execute(context.Background(), &domain.Plan{NoteQuery: "secret"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestExecute_EmptyPlanIsNoCriteria(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)

	ids, err := f.exec.Execute(context.Background(), &domain.Plan{})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExecute_UnsatisfiablePlanShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)

	plan := singlePlan(10)
	plan.Unsatisfiable = true
	ids, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExecute_ResultCached(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, 1)
	f.seedTag(t, 10, "forest")
	f.tagItems(t, 10, 1)
	f.notes.matches["sunset"] = []int64{1}

	plan := singlePlan(10)
	plan.NoteQuery = "sunset"

	_, err := f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	_, err = f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 1, f.notes.calls, "second execution should hit the cache")

	f.registry.InvalidateAll()
	_, err = f.exec.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 2, f.notes.calls)
}

func TestExecute_EquivalentPlansShareCacheKey(t *testing.T) {
	a := &domain.Plan{IncludeGroups: []domain.ResolvedToken{
		domain.SingleToken(10),
		domain.SingleToken(11),
	}}
	b := &domain.Plan{IncludeGroups: []domain.ResolvedToken{
		domain.SingleToken(11),
		domain.SingleToken(10),
	}}
	assert.Equal(t, a.Key(), b.Key())
}
