package api

import (
	"net/http"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/http/response"
)

func (s *Server) registerHealthRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
