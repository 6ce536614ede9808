package openapi

import "errors"

var (
	// ErrInvalidDocument indicates the schema could not be parsed.
	ErrInvalidDocument = errors.New("invalid API schema document")

	// ErrNotOpenAPI indicates the document parsed but is not an OpenAPI or Swagger schema.
	ErrNotOpenAPI = errors.New("document is not an OpenAPI schema")
)
