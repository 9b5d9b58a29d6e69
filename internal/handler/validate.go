package handler

import (
	"net/http"
	"time"

	"github.com/keygate/keygate/internal/service"
)

// ValidateHandler checks presented API keys without mutating them.
type ValidateHandler struct {
	keySvc *service.KeyService
}

// NewValidateHandler creates a new ValidateHandler.
func NewValidateHandler(keySvc *service.KeyService) *ValidateHandler {
	return &ValidateHandler{keySvc: keySvc}
}

// validateRequest is the expected payload for the Validate endpoint.
type validateRequest struct {
	APIKey string `json:"apiKeyToValidate"`
}

// validateResponse is the verdict payload. Status and Expires are omitted
// when no key record exists for the presented token.
type validateResponse struct {
	Valid   bool       `json:"valid"`
	Message string     `json:"message"`
	Status  string     `json:"status,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
}

// Validate reports whether a presented API key is currently usable.
// POST /validate-apikey
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "apiKeyToValidate is required")
		return
	}

	verdict, err := h.keySvc.Validate(r.Context(), req.APIKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to validate API key")
		return
	}

	resp := validateResponse{
		Valid:   verdict.Valid,
		Message: verdict.Message,
		Status:  verdict.Status,
	}
	if !verdict.ExpiresAt.IsZero() {
		expires := verdict.ExpiresAt
		resp.Expires = &expires
	}

	writeJSON(w, statusForVerdict(verdict), resp)
}

// statusForVerdict maps a verdict to its HTTP status: unknown keys are
// unauthorized, known-but-unusable keys are forbidden.
func statusForVerdict(v *service.Verdict) int {
	if v.Valid {
		return http.StatusOK
	}
	switch v.Reason {
	case service.ReasonKeyNotFound:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}
