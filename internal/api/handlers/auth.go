// Package handlers implements the HTTP endpoints. Handlers depend on narrow
// interfaces so tests can swap in fakes.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/api/middleware"
	"github.com/financepro/financepro/internal/authn"
	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/state"
)

// AuthService is the slice of the authentication layer the handlers need.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*authn.Session, string)
	SignUp(ctx context.Context, email, password, name string) string
	SignOut(ctx context.Context, sess *authn.Session)
	ResetPassword(ctx context.Context, email string) string
	CurrentUser(ctx context.Context, idToken string) *domain.User
}

// AuthHandler handles the session lifecycle endpoints.
type AuthHandler struct {
	auth       AuthService
	controller *state.Controller
	log        zerolog.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(auth AuthService, controller *state.Controller, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, controller: controller, log: log}
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	sess, errMsg := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if errMsg != "" {
		middleware.WriteError(w, http.StatusUnauthorized, errMsg)
		return
	}

	h.controller.StartSession(r.Context(), sess.User)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": sess.IDToken,
		"user":  sess.User,
	})
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if errMsg := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Name); errMsg != "" {
		middleware.WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"status": "created",
	})
}

// SignOut handles POST /api/auth/signout. Protected route; the session being
// ended is whichever token authenticated the request.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user != nil {
		h.auth.SignOut(r.Context(), &authn.Session{User: *user})
	}
	h.controller.EndSession()

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// ResetPassword handles POST /api/auth/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		middleware.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if errMsg := h.auth.ResetPassword(r.Context(), req.Email); errMsg != "" {
		middleware.WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset_sent"})
}

// Session handles GET /api/auth/session. Verifies the presented token and,
// when valid, resumes the in-memory session for that user.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.WriteError(w, http.StatusUnauthorized, "No active session")
		return
	}

	if active := h.controller.User(); active == nil || active.ID != user.ID {
		h.controller.StartSession(r.Context(), *user)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
