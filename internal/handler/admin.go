package handler

import (
	"errors"
	"net/http"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/service"
	"github.com/keygate/keygate/internal/store"
)

// AdminHandler covers the administrator surface: registration, login, and the
// protected listing of registered users with their keys.
type AdminHandler struct {
	authSvc *service.AuthService
	keySvc  *service.KeyService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authSvc *service.AuthService, keySvc *service.KeyService) *AdminHandler {
	return &AdminHandler{
		authSvc: authSvc,
		keySvc:  keySvc,
	}
}

// registerRequest is the expected payload for the Register endpoint.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response payload for a successful login.
type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	Message   string `json:"message"`
}

// Register creates a new administrator account.
// POST /admin/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if _, err := h.authSvc.Register(r.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "Admin with this email already exists")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to register admin")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Admin registered successfully",
	})
}

// Login authenticates an administrator and returns a signed session token.
// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Same response for unknown email and wrong password.
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Authentication error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(h.authSvc.TokenTTL().Seconds()),
		Message:   "Login successful",
	})
}

// ListUsers returns every registered user joined to its API key.
// GET /admin/users (protected)
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.keySvc.ListUsersWithKeys(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	if rows == nil {
		rows = make([]model.UserWithKey, 0)
	}
	writeJSON(w, http.StatusOK, rows)
}
