package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
)

func (s *Server) registerGalleryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/items",
		Summary:     "Search items",
		Description: "Resolves a comma-separated tag expression (literals, wildcards, -exclusions, meta predicates) to a page of matching items",
		Tags:        []string{"Gallery"},
	}, s.handleSearchItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "facetTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/facets",
		Summary:     "Facet tags",
		Description: "Returns candidate narrowing tags for the current expression with co-occurrence counts",
		Tags:        []string{"Gallery"},
	}, s.handleFacetTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "recommendItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/recommendations",
		Summary:     "Recommend similar items",
		Description: "Returns tag-similar items ranked by Jaccard similarity",
		Tags:        []string{"Gallery"},
	}, s.handleRecommend)
}

// === DTOs ===

// SearchItemsInput contains the item search parameters.
type SearchItemsInput struct {
	Tags     string `query:"tags" validate:"omitempty,max=1024" doc:"Comma-separated tag expression"`
	Notes    string `query:"notes" validate:"omitempty,max=512" doc:"Free-text note filter"`
	Page     int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100" doc:"Items per page (default 24)"`
}

// SearchItemsOutput wraps the search response.
type SearchItemsOutput struct {
	Body service.SearchItemsResult
}

// FacetTagsInput contains the facet parameters.
type FacetTagsInput struct {
	Tags     string `query:"tags" validate:"omitempty,max=1024" doc:"Comma-separated tag expression"`
	Category string `query:"category" validate:"omitempty,max=32" doc:"Restrict suggestions to one category"`
	Text     string `query:"text" validate:"omitempty,max=128" doc:"Substring filter on suggestion names"`
	Limit    int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max suggestions (default 25)"`
}

// FacetTagsOutput wraps the facet response.
type FacetTagsOutput struct {
	Body service.FacetTagsResult
}

// RecommendInput identifies the source item.
type RecommendInput struct {
	ID            int64  `path:"id" doc:"Source item id"`
	ExcludeGroups string `query:"exclude_groups" validate:"omitempty,max=256" doc:"Comma-separated group ids whose members are excluded"`
}

// RecommendResponse carries ranked similar items.
type RecommendResponse struct {
	Items []service.RecommendedItem `json:"items"`
}

// RecommendOutput wraps the recommendation response.
type RecommendOutput struct {
	Body RecommendResponse
}

// === Handlers ===

func (s *Server) handleSearchItems(ctx context.Context, input *SearchItemsInput) (*SearchItemsOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	result, err := s.services.Gallery.SearchItems(ctx, input.Tags, input.Notes, input.Page, input.PageSize)
	if err != nil {
		s.logger.Error("item search failed", "error", err, "tags", input.Tags)
		return nil, err
	}
	return &SearchItemsOutput{Body: *result}, nil
}

func (s *Server) handleFacetTags(ctx context.Context, input *FacetTagsInput) (*FacetTagsOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	result, err := s.services.Facets.FacetTags(ctx, input.Tags, input.Category, input.Text, input.Limit)
	if err != nil {
		s.logger.Error("facet request failed", "error", err, "tags", input.Tags)
		return nil, err
	}
	return &FacetTagsOutput{Body: *result}, nil
}

func (s *Server) handleRecommend(ctx context.Context, input *RecommendInput) (*RecommendOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	excludeGroups, err := parseIDList(input.ExcludeGroups)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid exclude_groups: " + err.Error())
	}

	items, err := s.services.Recommend.Recommend(ctx, input.ID, excludeGroups)
	if err != nil {
		s.logger.Error("recommendation failed", "error", err, "item_id", input.ID)
		return nil, err
	}
	return &RecommendOutput{Body: RecommendResponse{Items: items}}, nil
}

// parseIDList parses a comma-separated id list, skipping empty segments.
func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
