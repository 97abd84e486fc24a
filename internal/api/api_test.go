package api

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/auth"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/engine"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/facet"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/query"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/recommend"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/search"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store/sqlite"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/vocab"
)

const testAdminPassword = "correct-horse-battery"

// testEnvelope mirrors the versioned response wrapper for decoding in tests.
type testEnvelope[T any] struct {
	V       string `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
}

// testServer wraps the API server with direct access to its collaborators.
type testServer struct {
	*Server
	api humatest.TestAPI
	sql *sqlite.Store
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	sql, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { sql.Close() })

	blPath := filepath.Join(dir, "blacklist.txt")
	require.NoError(t, os.WriteFile(blPath, nil, 0o600))
	bl := blacklist.New(blPath, logger)
	require.NoError(t, bl.Load())

	idx, err := search.NewIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	registry := cache.NewRegistry(logger)
	voc := vocab.New(sql, bl, registry, vocab.Options{}, logger)
	compiler := query.New(voc, bl, logger)
	exec := engine.New(sql, idx, registry, engine.Options{}, logger)
	facets := facet.New(sql, bl, logger)
	rec := recommend.New(sql, recommend.Options{}, logger)

	services := &Services{
		Gallery:   service.NewGalleryService(compiler, exec, sql, logger),
		Facets:    service.NewFacetService(compiler, exec, facets, sql, logger),
		Notes:     service.NewNoteSearchService(idx, service.DefaultNotePageSize, logger),
		Recommend: service.NewRecommendService(rec, sql, logger),
		Sync:      service.NewSyncService(sql, idx, bl, registry, logger),
	}

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, hash, 15*time.Minute)
	require.NoError(t, err)

	s := NewServer(services, sql, tokens, logger)
	t.Cleanup(s.Stop)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		sql:    sql,
	}
}

func (ts *testServer) seedItem(t *testing.T, id int64, blurhash string) {
	t.Helper()
	require.NoError(t, ts.sql.UpsertItem(context.Background(), &domain.Item{
		ID:         id,
		Hash:       fmt.Sprintf("hash-%016x", id),
		Kind:       domain.MediaImage,
		Blurhash:   blurhash,
		ImportedAt: time.Unix(1700000000+id, 0),
	}))
}

func (ts *testServer) seedTag(t *testing.T, id int64, name string, category domain.TagCategory, count int) {
	t.Helper()
	require.NoError(t, ts.sql.UpsertTag(context.Background(), &domain.Tag{
		ID: id, Name: name, Category: category, ItemCount: count,
	}))
}

func (ts *testServer) tagItems(t *testing.T, tagID int64, itemIDs ...int64) {
	t.Helper()
	ctx := context.Background()
	for _, itemID := range itemIDs {
		existing, err := ts.sql.TagIDsForItem(ctx, itemID)
		require.NoError(t, err)
		require.NoError(t, ts.sql.SetItemTags(ctx, itemID, append(existing, tagID)))
	}
}

// login exchanges the admin password for a bearer token.
func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/admin/login", map[string]any{
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	var envelope testEnvelope[AdminLoginResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func TestSearchItemsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	for i := int64(1); i <= 3; i++ {
		ts.seedItem(t, i, "")
	}
	ts.seedTag(t, 10, "forest", domain.CategoryGeneral, 2)
	ts.tagItems(t, 10, 1, 2)

	resp := ts.api.Get("/api/v1/items?tags=forest")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.SearchItemsResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "1", envelope.V)
	assert.Equal(t, 2, envelope.Data.TotalCount)
	require.Len(t, envelope.Data.Items, 2)
	// Newest import first.
	assert.Equal(t, int64(2), envelope.Data.Items[0].ID)
	assert.Equal(t, int64(1), envelope.Data.Items[1].ID)
	assert.NotNil(t, envelope.Data.ResolvedWildcards)
}

func TestSearchItemsEmptyExpressionReturnsNothing(t *testing.T) {
	ts := setupTestServer(t)
	for i := int64(1); i <= 3; i++ {
		ts.seedItem(t, i, "")
	}

	// A blank query means no criteria, not all items.
	resp := ts.api.Get("/api/v1/items")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.SearchItemsResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Zero(t, envelope.Data.TotalCount)
	assert.Empty(t, envelope.Data.Items)
}

func TestSearchItemsInvalidWildcard(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/items?tags=a*b*c*d*")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION", body["code"])
	assert.NotEmpty(t, body["error"])
}

func TestFacetTagsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	for i := int64(1); i <= 4; i++ {
		ts.seedItem(t, i, "")
	}
	ts.seedTag(t, 10, "red_hair", domain.CategoryGeneral, 3)
	ts.seedTag(t, 11, "smile", domain.CategoryGeneral, 2)
	ts.tagItems(t, 10, 1, 2, 3)
	ts.tagItems(t, 11, 1, 2)

	resp := ts.api.Get("/api/v1/items/facets?tags=red_hair")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.FacetTagsResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, 3, envelope.Data.MatchingCount)
	require.Len(t, envelope.Data.SelectedTags, 1)
	assert.Equal(t, "red_hair", envelope.Data.SelectedTags[0].Name)
	// Suggestions never echo the selected tag back.
	for _, s := range envelope.Data.Tags {
		assert.NotEqual(t, "red_hair", s.Name)
	}
}

func TestFacetTagsUnknownCategory(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/items/facets?category=bogus")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestRecommendEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	for i := int64(1); i <= 3; i++ {
		ts.seedItem(t, i, "")
	}
	ts.seedTag(t, 10, "forest", domain.CategoryGeneral, 3)
	ts.seedTag(t, 11, "river", domain.CategoryGeneral, 2)
	ts.tagItems(t, 10, 1, 2, 3)
	ts.tagItems(t, 11, 1, 2)

	resp := ts.api.Get("/api/v1/items/1/recommendations")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[RecommendResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	// Item 2 duplicates the source's tag set exactly, so it is excluded;
	// item 3 shares one of two tags.
	require.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, int64(3), envelope.Data.Items[0].Item.ID)
	assert.InDelta(t, 0.5, envelope.Data.Items[0].Similarity, 0.001)
}

func TestRecommendUnknownItemYieldsEmptyList(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/items/999/recommendations")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[RecommendResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Items)
}

func TestRecommendInvalidExcludeGroups(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedItem(t, 1, "")

	resp := ts.api.Get("/api/v1/items/1/recommendations?exclude_groups=1,abc")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSearchNotesEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedItem(t, 1, "")
	require.NoError(t, ts.sql.UpsertNote(context.Background(), &domain.Note{
		ID: 1, ItemID: 1, Name: "description", Content: "original desc with background details",
	}))

	token := ts.login(t)
	resp := ts.api.Post("/api/v1/admin/sync/complete", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/notes/search?q=back")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.SearchNotesResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Equal(t, 1, envelope.Data.TotalCount)
	assert.Contains(t, envelope.Data.Results[0].Snippet, "<em>back</em>")
}

func TestAdminLoginWrongPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/admin/login", map[string]any{
		"password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	ts := setupTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/admin/sync/complete"},
		{http.MethodGet, "/api/v1/admin/blacklist"},
		{http.MethodPost, "/api/v1/admin/blacklist/reload"},
	}
	for _, p := range paths {
		var resp *httptest.ResponseRecorder
		switch p.method {
		case http.MethodGet:
			resp = ts.api.Get(p.path)
		default:
			resp = ts.api.Post(p.path)
		}
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "%s %s", p.method, p.path)
	}
}

func TestAdminGarbageTokenRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/admin/blacklist", "Authorization: Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCompleteSyncEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedItem(t, 1, "")
	require.NoError(t, ts.sql.UpsertNote(context.Background(), &domain.Note{
		ID: 1, ItemID: 1, Name: "note", Content: "a note", Translation: "une note",
	}))

	token := ts.login(t)
	resp := ts.api.Post("/api/v1/admin/sync/complete", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.SyncReport]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.JobID)
	assert.Equal(t, 2, envelope.Data.IndexedDocuments)
	assert.GreaterOrEqual(t, envelope.Data.DurationMillis, int64(0))
}

func TestBlacklistRoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t)

	resp := ts.api.Put("/api/v1/admin/blacklist",
		"Authorization: Bearer "+token,
		map[string]any{"entries": []string{"spam_tag", "bad_*"}},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/admin/blacklist", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[BlacklistResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.ElementsMatch(t, []string{"spam_tag", "bad_*"}, envelope.Data.Entries)
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestPlaceholderEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedItem(t, 1, "LFE.@D9F01_2%L%MIVD*9Goe-;WB")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/1/placeholder?w=32", http.NoBody)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
}

func TestPlaceholderMissingItem(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/42/placeholder", http.NoBody)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceholderNoBlurhash(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedItem(t, 1, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/1/placeholder", http.NoBody)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
