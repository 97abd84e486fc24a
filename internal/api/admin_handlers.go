package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminLogin",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/login",
		Summary:     "Admin login",
		Description: "Exchanges the admin secret for a short-lived token",
		Tags:        []string{"Admin"},
	}, s.handleAdminLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "completeSync",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/sync/complete",
		Summary:     "Signal sync completion",
		Description: "Refreshes tag counts, rebuilds the note index, and clears every cache. Called by the external sync subsystem after it finishes mutating the mirror.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCompleteSync)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBlacklist",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/blacklist",
		Summary:     "Get blacklist",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBlacklist)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceBlacklist",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/blacklist",
		Summary:     "Replace blacklist",
		Description: "Installs a new pattern set and clears every cache",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceBlacklist)

	huma.Register(s.api, huma.Operation{
		OperationID: "reloadBlacklist",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/blacklist/reload",
		Summary:     "Reload blacklist from disk",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReloadBlacklist)
}

// requireAdmin validates the Authorization header as an admin token.
func (s *Server) requireAdmin(authHeader string) error {
	if authHeader == "" {
		return huma.Error401Unauthorized("Missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return huma.Error401Unauthorized("Invalid authorization header format")
	}
	return s.tokens.Verify(parts[1])
}

// === DTOs ===

// AdminLoginInput carries the admin secret.
type AdminLoginInput struct {
	Body struct {
		Password string `json:"password" validate:"required,max=1024" doc:"Admin secret"`
	}
}

// AdminLoginResponse carries the minted token.
type AdminLoginResponse struct {
	Token string `json:"token"`
}

// AdminLoginOutput wraps the login response.
type AdminLoginOutput struct {
	Body AdminLoginResponse
}

// AdminInput is the common header input for protected admin operations.
type AdminInput struct {
	Authorization string `header:"Authorization"`
}

// CompleteSyncOutput wraps the sync report.
type CompleteSyncOutput struct {
	Body service.SyncReport
}

// BlacklistResponse carries the active pattern set.
type BlacklistResponse struct {
	Entries []string `json:"entries"`
}

// BlacklistOutput wraps the blacklist response.
type BlacklistOutput struct {
	Body BlacklistResponse
}

// ReplaceBlacklistInput carries the new pattern set.
type ReplaceBlacklistInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Entries []string `json:"entries" validate:"max=10000" doc:"Plain names or wildcard patterns"`
	}
}

// === Handlers ===

func (s *Server) handleAdminLogin(_ context.Context, input *AdminLoginInput) (*AdminLoginOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	token, err := s.tokens.Login(input.Body.Password)
	if err != nil {
		return nil, err
	}
	return &AdminLoginOutput{Body: AdminLoginResponse{Token: token}}, nil
}

func (s *Server) handleCompleteSync(ctx context.Context, input *AdminInput) (*CompleteSyncOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	report, err := s.services.Sync.CompleteSync(ctx)
	if err != nil {
		s.logger.Error("sync completion failed", "error", err)
		return nil, err
	}
	return &CompleteSyncOutput{Body: *report}, nil
}

func (s *Server) handleGetBlacklist(_ context.Context, input *AdminInput) (*BlacklistOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}
	return &BlacklistOutput{Body: BlacklistResponse{Entries: s.services.Sync.BlacklistEntries()}}, nil
}

func (s *Server) handleReplaceBlacklist(ctx context.Context, input *ReplaceBlacklistInput) (*BlacklistOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Sync.ReplaceBlacklist(ctx, input.Body.Entries); err != nil {
		s.logger.Error("blacklist replace failed", "error", err)
		return nil, err
	}
	return &BlacklistOutput{Body: BlacklistResponse{Entries: s.services.Sync.BlacklistEntries()}}, nil
}

func (s *Server) handleReloadBlacklist(ctx context.Context, input *AdminInput) (*BlacklistOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Sync.ReloadBlacklist(ctx); err != nil {
		s.logger.Error("blacklist reload failed", "error", err)
		return nil, err
	}
	return &BlacklistOutput{Body: BlacklistResponse{Entries: s.services.Sync.BlacklistEntries()}}, nil
}
