package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/cache"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/id"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/search"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// SyncReport summarizes a sync-completion pass. Duration is reported in
// milliseconds so the wire shape is a plain integer.
type SyncReport struct {
	JobID            string `json:"jobId"`
	IndexedDocuments int    `json:"indexedDocuments"`
	DurationMillis   int64  `json:"durationMs"`
}

// SyncService handles the hooks the external sync subsystem calls after it
// mutates the mirror: refreshing denormalized counts, rebuilding the note
// index, and clearing every cache so stale sets never survive a sync.
type SyncService struct {
	store     store.Store
	index     *search.Index
	blacklist *blacklist.Blacklist
	caches    *cache.Registry
	logger    *slog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(s store.Store, index *search.Index, bl *blacklist.Blacklist, caches *cache.Registry, logger *slog.Logger) *SyncService {
	return &SyncService{
		store:     s,
		index:     index,
		blacklist: bl,
		caches:    caches,
		logger:    logger,
	}
}

// CompleteSync runs the full post-sync pass: tag-count refresh, note index
// rebuild, cache invalidation. Invalidation happens last so requests racing
// the rebuild repopulate from fresh data.
func (s *SyncService) CompleteSync(ctx context.Context) (*SyncReport, error) {
	jobID, err := id.Generate("sync-")
	if err != nil {
		return nil, err
	}
	started := time.Now()

	if err := s.store.RefreshTagCounts(ctx); err != nil {
		return nil, fmt.Errorf("refresh tag counts: %w", err)
	}

	indexed, err := s.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}

	s.caches.InvalidateAll()

	report := &SyncReport{
		JobID:            jobID,
		IndexedDocuments: indexed,
		DurationMillis:   time.Since(started).Milliseconds(),
	}
	s.logger.Info("sync completed",
		"job_id", report.JobID,
		"indexed_documents", report.IndexedDocuments,
		"duration_ms", report.DurationMillis,
	)
	return report, nil
}

// ReindexAll rebuilds the note index from scratch: every note variant and
// every group title, with member item ids denormalized in.
func (s *SyncService) ReindexAll(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.Document

	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list notes: %w", err)
	}
	for _, n := range notes {
		docs = append(docs, search.NoteDocuments(n)...)
	}

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("list groups: %w", err)
	}
	for _, g := range groups {
		members, err := s.store.ItemIDsInGroup(ctx, g.ID)
		if err != nil {
			return 0, fmt.Errorf("group %d members: %w", g.ID, err)
		}
		docs = append(docs, search.GroupTitleDocuments(g, members)...)
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}
	return len(docs), nil
}

// ReloadBlacklist re-reads the pattern file and clears every cache, since
// cached resolutions and facet sets may now surface banned tags.
func (s *SyncService) ReloadBlacklist(_ context.Context) error {
	if err := s.blacklist.Load(); err != nil {
		return fmt.Errorf("reload blacklist: %w", err)
	}
	s.caches.InvalidateAll()
	s.logger.Info("blacklist reloaded", "entries", s.blacklist.Len())
	return nil
}

// BlacklistEntries returns the active pattern set in sorted order.
func (s *SyncService) BlacklistEntries() []string {
	return s.blacklist.Entries()
}

// ReplaceBlacklist installs a new pattern set, persists it, and clears the
// caches.
func (s *SyncService) ReplaceBlacklist(_ context.Context, entries []string) error {
	if err := s.blacklist.Replace(entries); err != nil {
		return fmt.Errorf("replace blacklist: %w", err)
	}
	s.caches.InvalidateAll()
	s.logger.Info("blacklist replaced", "entries", s.blacklist.Len())
	return nil
}
