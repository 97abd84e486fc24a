package validation_test

import (
	"net/http"
	"testing"

	domainerrors "github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/validation"
	"github.com/stretchr/testify/assert"
)

type TestRequest struct {
	Tags     string `json:"tags" validate:"required,max=1024"`
	Category string `json:"category" validate:"omitempty,oneof=creator source subject general meta-admin"`
	Page     int    `json:"page" validate:"gte=0"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Tags:     "forest, -cityscape",
		Category: "general",
		Page:     0,
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: Minor memory optimization not worth the complexity in test code
	tests := []struct {
		name        string
		req         TestRequest
		wantErrCode int
		wantField   string
	}{
		{
			name: "missing required field",
			req: TestRequest{
				Tags: "", // Missing
			},
			wantErrCode: http.StatusBadRequest,
			wantField:   "tags",
		},
		{
			name: "query too long",
			req: TestRequest{
				Tags: string(make([]byte, 1025)),
			},
			wantErrCode: http.StatusBadRequest,
			wantField:   "tags",
		},
		{
			name: "unknown category",
			req: TestRequest{
				Tags:     "forest",
				Category: "mood",
			},
			wantErrCode: http.StatusBadRequest,
			wantField:   "category",
		},
		{
			name: "negative page",
			req: TestRequest{
				Tags: "forest",
				Page: -1,
			},
			wantErrCode: http.StatusBadRequest,
			wantField:   "page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *domainerrors.Error
			if assert.True(t, domainerrors.As(err, &domainErr)) {
				assert.Equal(t, tt.wantErrCode, domainErr.HTTPStatus())
				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok, "details should be a field error map") {
					assert.Contains(t, details, tt.wantField)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Tags: "",
	}

	err := v.Validate(req)
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	if assert.True(t, domainerrors.As(err, &domainErr)) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// Should use JSON tag name "tags", not struct field name "Tags"
			assert.Contains(t, details, "tags")
			assert.NotContains(t, details, "Tags")
		}
	}
}
