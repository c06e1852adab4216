package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"notewise/internal/auth/model"
	"notewise/internal/auth/service"
	"notewise/middleware"
	"notewise/pkg/logger"
)

type AuthHandler struct {
	Service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrEmailTaken):
		http.Error(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrRevoked):
		http.Error(w, "Unauthorized: Invalid or expired token", http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	default:
		logger.Sugar.Errorf("Handler: Failed to %s: %v", op, err)
		http.Error(w, "Failed to "+op, http.StatusInternalServerError)
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.Service.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, "sign up", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, "sign in", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.Service.SignOut(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		writeError(w, "sign out", err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signed out successfully"))
}

// OAuth redirects to the provider's consent page.
func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	target, err := h.Service.OAuthURL(r.URL.Query().Get("provider"), r.URL.Query().Get("redirect_to"))
	if err != nil {
		writeError(w, "start oauth", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	u, err := h.Service.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Profile serves GET and PUT on /api/users/me.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.CurrentUser(w, r)
	case http.MethodPut:
		var req model.UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		userID, _ := middleware.UserID(r.Context())

		u, err := h.Service.UpdateProfile(r.Context(), userID, req)
		if err != nil {
			writeError(w, "update profile", err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
