package service

import (
	"context"
	"log/slog"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/search"
)

// DefaultNotePageSize is used when the configured page size is missing.
const DefaultNotePageSize = 20

// SearchNotesResult is one page of ranked note/title matches.
type SearchNotesResult struct {
	Results    []search.Hit `json:"results"`
	TotalCount int          `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
}

// NoteSearchService answers free-text note and title searches.
type NoteSearchService struct {
	index    *search.Index
	pageSize int
	logger   *slog.Logger
}

// NewNoteSearchService creates a new note search service.
func NewNoteSearchService(index *search.Index, pageSize int, logger *slog.Logger) *NoteSearchService {
	if pageSize <= 0 {
		pageSize = DefaultNotePageSize
	}
	return &NoteSearchService{
		index:    index,
		pageSize: pageSize,
		logger:   logger,
	}
}

// SearchNotes runs a free-text query and returns the requested page with
// highlighted snippets. Language variants are deduplicated by the index.
func (s *NoteSearchService) SearchNotes(ctx context.Context, rawQuery string, page int) (*SearchNotesResult, error) {
	if page < 1 {
		page = 1
	}

	res, err := s.index.Search(ctx, rawQuery, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}

	return &SearchNotesResult{
		Results:    res.Hits,
		TotalCount: res.Total,
		TotalPages: (res.Total + s.pageSize - 1) / s.pageSize,
		Page:       page,
		PageSize:   s.pageSize,
	}, nil
}
