package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/http/response"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/media/placeholder"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// Placeholder rendering serves raw PNG bytes, so it stays on plain chi
// handlers instead of the typed API surface.
func (s *Server) registerMediaRoutes() {
	s.router.Get("/api/v1/items/{id}/placeholder", s.handlePlaceholder)
}

func (s *Server) handlePlaceholder(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid item id", s.logger)
		return
	}

	item, err := s.store.GetItem(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(w, "Item not found", s.logger)
			return
		}
		s.logger.Error("placeholder item lookup failed", "item_id", itemID, "error", err)
		response.InternalError(w, "Failed to load item", s.logger)
		return
	}
	if item.Blurhash == "" {
		response.NotFound(w, "Item has no placeholder", s.logger)
		return
	}

	width := parseDimension(r.URL.Query().Get("w"))
	height := parseDimension(r.URL.Query().Get("h"))

	png, err := placeholder.Render(item.Blurhash, width, height)
	if err != nil {
		s.logger.Error("placeholder render failed", "item_id", itemID, "error", err)
		response.DomainError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.logger.Debug("placeholder write failed", "item_id", itemID, "error", err)
	}
}

// parseDimension returns 0 for absent or garbage values, which Render
// replaces with its default size.
func parseDimension(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
