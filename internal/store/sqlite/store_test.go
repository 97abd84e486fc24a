package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedItem inserts a visible image item with known dimensions.
func seedItem(t *testing.T, s *Store, id int64) {
	t.Helper()
	seedItemKind(t, s, id, domain.MediaImage, 800, 600)
}

func seedItemKind(t *testing.T, s *Store, id int64, kind domain.MediaKind, w, h int) {
	t.Helper()
	err := s.UpsertItem(context.Background(), &domain.Item{
		ID:         id,
		Hash:       itemHash(id),
		Width:      w,
		Height:     h,
		Kind:       kind,
		ImportedAt: time.Unix(1700000000+id, 0),
	})
	if err != nil {
		t.Fatalf("seed item %d: %v", id, err)
	}
}

func itemHash(id int64) string {
	return fmt.Sprintf("hash-%016x", id)
}

func seedTag(t *testing.T, s *Store, id int64, name string, category domain.TagCategory, count int) {
	t.Helper()
	err := s.UpsertTag(context.Background(), &domain.Tag{
		ID:        id,
		Name:      name,
		Category:  category,
		ItemCount: count,
	})
	if err != nil {
		t.Fatalf("seed tag %d: %v", id, err)
	}
}

func tagItems(t *testing.T, s *Store, tagID int64, itemIDs ...int64) {
	t.Helper()
	ctx := context.Background()
	for _, itemID := range itemIDs {
		existing, err := s.TagIDsForItem(ctx, itemID)
		if err != nil {
			t.Fatalf("get item tags: %v", err)
		}
		if err := s.SetItemTags(ctx, itemID, append(existing, tagID)); err != nil {
			t.Fatalf("tag item %d with %d: %v", itemID, tagID, err)
		}
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{"items", "tags", "item_tags", "item_groups", "group_members", "notes"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}
