package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/middleware"
	"github.com/clientiq-crm/bff/internal/session"
)

// SessionStore defines the upstream methods needed by session handlers.
// Satisfied by *crm.API; narrow interface for testability.
type SessionStore interface {
	Login(ctx context.Context, email, password string) (crm.User, error)
	CreateUser(ctx context.Context, u crm.User) (crm.User, error)
}

// SessionHandler handles login, registration, and the session itself.
type SessionHandler struct {
	store  SessionStore
	secret string
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(store SessionStore, secret string) *SessionHandler {
	return &SessionHandler{store: store, secret: secret}
}

// RegisterPublicRoutes registers the endpoints reachable without a session.
func (h *SessionHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/session/login", h.Login)
	r.Post("/session/register", h.Register)
}

// RegisterRoutes registers the endpoints that require a session.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/session/me", h.Me)
	r.Post("/session/logout", h.Logout)
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type profileResponse struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// --- Handlers ---

// Login proxies credentials to the upstream and, on success, seals the
// returned profile snapshot in the session cookie. Neither the password nor
// any upstream token is retained.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	user, err := h.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var se *crm.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusBadRequest) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		log.Printf("ERROR: login: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	token, err := session.IssueToken(h.secret, session.Profile{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		log.Printf("ERROR: issue session token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	session.SetCookie(w, token)
	writeJSON(w, http.StatusOK, profileResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// Register proxies user creation to the upstream. It does not log the new
// user in; the UI redirects to the login screen afterwards.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password is required"})
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first and last name are required"})
		return
	}

	user, err := h.store.CreateUser(r.Context(), crm.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		var se *crm.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusConflict {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
		log.Printf("ERROR: register user: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	writeJSON(w, http.StatusCreated, profileResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// Me returns the current session's profile snapshot.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFromContext(r.Context())
	if profile == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        profile.UserID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	})
}

// Logout clears the session cookie.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// --- Shared helpers ---

// Notifier announces successful mutations to connected UIs.
// Satisfied by *ws.Hub; narrow interface for testability.
type Notifier interface {
	Broadcast(eventType string)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// money renders a monetary value the way every response does: two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
