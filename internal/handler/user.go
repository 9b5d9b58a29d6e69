package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/keygate/keygate/internal/service"
	"github.com/keygate/keygate/internal/store"
)

// UserHandler covers end-user registration, which issues a fresh API key as
// part of creating the user.
type UserHandler struct {
	keySvc *service.KeyService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(keySvc *service.KeyService) *UserHandler {
	return &UserHandler{keySvc: keySvc}
}

// userRegisterRequest is the expected payload for the Register endpoint.
type userRegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// userRegisterResponse is returned on successful registration. The plaintext
// key appears here and nowhere else on the public surface.
type userRegisterResponse struct {
	Message string    `json:"message"`
	APIKey  string    `json:"apiKey"`
	Expires time.Time `json:"expires"`
}

// Register creates a user together with its API key in one step.
// POST /user/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req userRegisterRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	issued, err := h.keySvc.Issue(r.Context(), req.FirstName, req.LastName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "firstName, lastName and email are required")
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "User with this email already exists")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, userRegisterResponse{
		Message: "User registered successfully",
		APIKey:  issued.Token,
		Expires: issued.ExpiresAt,
	})
}
