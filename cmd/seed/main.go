// Package main provides a tool to seed the mirror database with test data.
//
// It creates items, tags, groups, and notes so search, facets, and
// recommendations can be exercised against a development server.
//
// Usage:
//
//	DATA_PATH=~/nextbooru go run ./cmd/seed
//	DATA_PATH=~/nextbooru go run ./cmd/seed --items 500
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store/sqlite"
)

var itemCount = flag.Int("items", 200, "Number of items to create")

var tagPool = []struct {
	name     string
	category domain.TagCategory
}{
	{"landscape", domain.CategoryGeneral},
	{"portrait", domain.CategoryGeneral},
	{"night", domain.CategoryGeneral},
	{"forest", domain.CategoryGeneral},
	{"river", domain.CategoryGeneral},
	{"red_hair", domain.CategoryGeneral},
	{"blue_eyes", domain.CategoryGeneral},
	{"smile", domain.CategoryGeneral},
	{"sketch", domain.CategoryGeneral},
	{"monochrome", domain.CategoryGeneral},
	{"alice", domain.CategorySubject},
	{"cheshire_cat", domain.CategorySubject},
	{"white_rabbit", domain.CategorySubject},
	{"tenniel", domain.CategoryCreator},
	{"carroll", domain.CategoryCreator},
	{"wonderland_weekly", domain.CategorySource},
	{"looking_glass_press", domain.CategorySource},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/nextbooru")
	}
	dbPath := filepath.Join(dataPath, "nextbooru.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Tags first so item tagging can reference them.
	for i, t := range tagPool {
		tag := &domain.Tag{
			ID:       int64(i + 1),
			Name:     t.name,
			Category: t.category,
		}
		if err := s.UpsertTag(ctx, tag); err != nil {
			log.Fatalf("Failed to create tag %s: %v", t.name, err)
		}
	}
	fmt.Printf("Created %d tags\n", len(tagPool))

	kinds := []domain.MediaKind{domain.MediaImage, domain.MediaImage, domain.MediaVideo}
	now := time.Now()

	for i := 1; i <= *itemCount; i++ {
		item := &domain.Item{
			ID:         int64(i),
			Hash:       fmt.Sprintf("seed-%016x", rng.Int63()),
			Width:      640 + rng.Intn(1280),
			Height:     480 + rng.Intn(1080),
			Kind:       kinds[rng.Intn(len(kinds))],
			ImportedAt: now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour),
		}
		if err := s.UpsertItem(ctx, item); err != nil {
			log.Fatalf("Failed to create item %d: %v", i, err)
		}

		// Two to six tags per item, skewed toward the front of the pool so
		// facet counts are uneven.
		n := 2 + rng.Intn(5)
		seen := map[int64]bool{}
		var tagIDs []int64
		for len(tagIDs) < n {
			id := int64(1 + rng.Intn(rng.Intn(len(tagPool))+1))
			if !seen[id] {
				seen[id] = true
				tagIDs = append(tagIDs, id)
			}
		}
		if err := s.SetItemTags(ctx, item.ID, tagIDs); err != nil {
			log.Fatalf("Failed to tag item %d: %v", i, err)
		}

		// Roughly one item in five gets a note.
		if rng.Intn(5) == 0 {
			note := &domain.Note{
				ID:      int64(i),
				ItemID:  item.ID,
				Name:    "description",
				Content: fmt.Sprintf("Seeded description for item %d with a forest background", i),
			}
			if rng.Intn(2) == 0 {
				note.Translation = fmt.Sprintf("Beschreibung für Element %d", i)
			}
			if err := s.UpsertNote(ctx, note); err != nil {
				log.Fatalf("Failed to create note for item %d: %v", i, err)
			}
		}
	}
	fmt.Printf("Created %d items\n", *itemCount)

	// A few groups of consecutive items, like multi-page works.
	groupID := int64(0)
	for start := 1; start+3 < *itemCount; start += 20 + rng.Intn(30) {
		groupID++
		g := &domain.Group{
			ID:              groupID,
			Title:           fmt.Sprintf("Seeded Collection %d", groupID),
			TranslatedTitle: fmt.Sprintf("Gesammelte Werke %d", groupID),
		}
		if err := s.UpsertGroup(ctx, g); err != nil {
			log.Fatalf("Failed to create group %d: %v", groupID, err)
		}
		for off := 0; off < 4; off++ {
			if err := s.AddItemToGroup(ctx, groupID, int64(start+off)); err != nil {
				log.Fatalf("Failed to add item %d to group %d: %v", start+off, groupID, err)
			}
		}
	}
	fmt.Printf("Created %d groups\n", groupID)

	if err := s.RefreshTagCounts(ctx); err != nil {
		log.Fatalf("Failed to refresh tag counts: %v", err)
	}

	fmt.Println("Done. Call POST /api/v1/admin/sync/complete to index notes.")
}
