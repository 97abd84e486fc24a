package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
)

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/search",
		Summary:     "Search notes and titles",
		Description: "Free-text search over note content, translations, and group titles. Supports quoted phrases, OR, and -exclusion.",
		Tags:        []string{"Notes"},
	}, s.handleSearchNotes)
}

// SearchNotesInput contains the note search parameters.
type SearchNotesInput struct {
	Query string `query:"q" validate:"required,min=1,max=512" doc:"Free-text query"`
	Page  int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
}

// SearchNotesOutput wraps the note search response.
type SearchNotesOutput struct {
	Body service.SearchNotesResult
}

func (s *Server) handleSearchNotes(ctx context.Context, input *SearchNotesInput) (*SearchNotesOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	result, err := s.services.Notes.SearchNotes(ctx, input.Query, input.Page)
	if err != nil {
		s.logger.Error("note search failed", "error", err, "query", input.Query)
		return nil, err
	}
	return &SearchNotesOutput{Body: *result}, nil
}
