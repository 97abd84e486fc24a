package vocab_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store/sqlite"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/vocab"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newVocab(t *testing.T, blacklistLines string, opts vocab.Options) (*vocab.Vocabulary, *sqlite.Store, *cache.Registry) {
	t.Helper()
	dir := t.TempDir()
	logger := testLogger()

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	blPath := ""
	if blacklistLines != "" {
		blPath = filepath.Join(dir, "blacklist.txt")
		require.NoError(t, os.WriteFile(blPath, []byte(blacklistLines), 0o600))
	}
	bl := blacklist.New(blPath, logger)
	require.NoError(t, bl.Load())

	registry := cache.NewRegistry(logger)
	return vocab.New(s, bl, registry, opts, logger), s, registry
}

func seedTag(t *testing.T, s *sqlite.Store, id int64, name string, category domain.TagCategory, count int) {
	t.Helper()
	require.NoError(t, s.UpsertTag(context.Background(), &domain.Tag{
		ID: id, Name: name, Category: category, ItemCount: count,
	}))
}

func TestResolveName(t *testing.T) {
	v, s, _ := newVocab(t, "", vocab.Options{})
	ctx := context.Background()

	seedTag(t, s, 1, "mignon", domain.CategoryCreator, 4)
	seedTag(t, s, 2, "mignon", domain.CategoryGeneral, 9)

	tags, err := v.ResolveName(ctx, "mignon")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	// Most popular first.
	assert.Equal(t, int64(2), tags[0].ID)
	assert.Equal(t, int64(1), tags[1].ID)
}

func TestResolveName_UnknownIsEmpty(t *testing.T) {
	v, _, _ := newVocab(t, "", vocab.Options{})

	tags, err := v.ResolveName(context.Background(), "nothing_here")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestResolveName_Cached(t *testing.T) {
	v, s, _ := newVocab(t, "", vocab.Options{})
	ctx := context.Background()

	seedTag(t, s, 1, "forest", domain.CategoryGeneral, 3)

	tags, err := v.ResolveName(ctx, "forest")
	require.NoError(t, err)
	require.Len(t, tags, 1)

	// A store change without invalidation is not visible through the cache.
	seedTag(t, s, 2, "forest", domain.CategorySubject, 1)
	tags, err = v.ResolveName(ctx, "forest")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestResolveName_RegistryInvalidation(t *testing.T) {
	v, s, registry := newVocab(t, "", vocab.Options{})
	ctx := context.Background()

	seedTag(t, s, 1, "forest", domain.CategoryGeneral, 3)
	_, err := v.ResolveName(ctx, "forest")
	require.NoError(t, err)

	seedTag(t, s, 2, "forest", domain.CategorySubject, 1)
	registry.InvalidateAll()

	tags, err := v.ResolveName(ctx, "forest")
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestResolveWildcard(t *testing.T) {
	v, s, _ := newVocab(t, "", vocab.Options{})
	ctx := context.Background()

	seedTag(t, s, 1, "forest", domain.CategoryGeneral, 10)
	seedTag(t, s, 2, "forest_path", domain.CategoryGeneral, 5)
	seedTag(t, s, 3, "desert", domain.CategoryGeneral, 7)

	exp, err := v.ResolveWildcard(ctx, "forest*")
	require.NoError(t, err)
	require.Len(t, exp.Tags, 2)
	assert.Equal(t, []string{"forest", "forest_path"}, exp.Resolution.Names)
	assert.False(t, exp.Resolution.Truncated)
	assert.Equal(t, 2, exp.Resolution.MatchCount)
}

func TestResolveWildcard_Truncation(t *testing.T) {
	v, s, _ := newVocab(t, "", vocab.Options{WildcardLimit: 3})
	ctx := context.Background()

	names := []string{"cat_a", "cat_b", "cat_c", "cat_d", "cat_e"}
	for i, name := range names {
		seedTag(t, s, int64(i+1), name, domain.CategoryGeneral, 100-i)
	}

	exp, err := v.ResolveWildcard(ctx, "cat*")
	require.NoError(t, err)
	assert.Len(t, exp.Tags, 3)
	assert.True(t, exp.Resolution.Truncated)
	// Most popular matches are kept.
	assert.Equal(t, []string{"cat_a", "cat_b", "cat_c"}, exp.Resolution.Names)
}

func TestResolveWildcard_BlacklistFiltered(t *testing.T) {
	v, s, _ := newVocab(t, "forest_hidden\n", vocab.Options{})
	ctx := context.Background()

	seedTag(t, s, 1, "forest", domain.CategoryGeneral, 10)
	seedTag(t, s, 2, "forest_hidden", domain.CategoryGeneral, 20)

	exp, err := v.ResolveWildcard(ctx, "forest*")
	require.NoError(t, err)
	require.Len(t, exp.Tags, 1)
	assert.Equal(t, "forest", exp.Tags[0].Name)
	assert.Equal(t, []string{"forest"}, exp.Resolution.Names)
}

func TestResolveWildcard_AmbiguousNameCollapsedInReport(t *testing.T) {
	v, s, _ := newVocab(t, "", vocab.Options{})
	ctx := context.Background()

	seedTag(t, s, 1, "mignon", domain.CategoryCreator, 4)
	seedTag(t, s, 2, "mignon", domain.CategoryGeneral, 9)

	exp, err := v.ResolveWildcard(ctx, "mign*")
	require.NoError(t, err)
	// Both tags participate in filtering, but the report lists the name once.
	assert.Len(t, exp.Tags, 2)
	assert.Equal(t, []string{"mignon"}, exp.Resolution.Names)
	assert.Equal(t, 1, exp.Resolution.MatchCount)
}

func TestResolveWildcard_Cached(t *testing.T) {
	v, s, _ := newVocab(t, "", vocab.Options{CacheTTL: time.Minute})
	ctx := context.Background()

	seedTag(t, s, 1, "forest", domain.CategoryGeneral, 10)

	_, err := v.ResolveWildcard(ctx, "forest*")
	require.NoError(t, err)

	seedTag(t, s, 2, "forest_path", domain.CategoryGeneral, 5)
	exp, err := v.ResolveWildcard(ctx, "forest*")
	require.NoError(t, err)
	assert.Len(t, exp.Tags, 1)
}
