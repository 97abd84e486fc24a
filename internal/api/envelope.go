package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope shape changes, so clients can
// detect incompatible servers before parsing data.
const envelopeVersion = "1"

// envelope is the wire shape EnvelopeTransformer produces for successes.
type envelope struct {
	V       string `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data"`
}

// EnvelopeTransformer wraps every successful huma response body in a
// versioned envelope. Error bodies (APIError) pass through untouched; they
// already carry their own structure.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if _, ok := v.(*APIError); ok {
		return v, nil
	}
	if len(status) > 0 && status[0] >= '4' {
		return v, nil
	}
	return &envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
