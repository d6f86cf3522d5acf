package httpadapter

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

//go:embed openapi.yaml
var openAPISpec []byte

const queryPath = "/v1/legal/query"

// requestValidator checks decoded request bodies against the embedded
// OpenAPI document.
type requestValidator struct {
	querySchema *openapi3.Schema
}

func newRequestValidator() (*requestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	item := doc.Paths.Value(queryPath)
	if item == nil || item.Post == nil || item.Post.RequestBody == nil || item.Post.RequestBody.Value == nil {
		return nil, fmt.Errorf("openapi document has no request body for POST %s", queryPath)
	}
	media := item.Post.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("openapi document has no JSON schema for POST %s", queryPath)
	}
	return &requestValidator{querySchema: media.Schema.Value}, nil
}

func (v *requestValidator) validateQuery(body any) error {
	if err := v.querySchema.VisitJSON(body); err != nil {
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) {
			err = fmt.Errorf("/%s: %s", strings.Join(schemaErr.JSONPointer(), "/"), schemaErr.Reason)
		}
		return domain.WrapError(domain.ErrInvalidInput, "validate query request", err)
	}
	return nil
}
