package handler

import (
	"net/http"

	"github.com/keygate/keygate/internal/openapi"
)

// OpenAPIHandler serves the generated OpenAPI document.
type OpenAPIHandler struct {
	generator *openapi.Generator
}

// NewOpenAPIHandler creates a new OpenAPIHandler.
func NewOpenAPIHandler(generator *openapi.Generator) *OpenAPIHandler {
	return &OpenAPIHandler{generator: generator}
}

// ServeSpec writes the OpenAPI document as JSON.
// GET /openapi.json
func (h *OpenAPIHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	doc := h.generator.Generate()
	writeJSON(w, http.StatusOK, doc)
}
