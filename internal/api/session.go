package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/domain"
	"github.com/ashureev/dslabs/internal/identity"
)

// SessionHandler handles visitor, preference and health endpoints.
type SessionHandler struct {
	*Handler
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *Handler) *SessionHandler {
	return &SessionHandler{Handler: base}
}

// RegisterRoutes registers session routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/me", h.GetMe)
		r.Get("/config", h.GetConfig)
		r.Get("/progress", h.GetProgress)
		r.Put("/preferences/theme", h.SetTheme)
	})
}

// Health reports whether the database answers.
func (h *SessionHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.HealthCheckTimeout)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "error", err)
		JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"workspaces": h.spaces.Len(),
	})
}

// GetMe returns the current visitor.
func (h *SessionHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if id.UserID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.repo.GetUser(r.Context(), id.UserID)
	if err != nil || user == nil {
		Error(w, http.StatusUnauthorized, "user not found")
		return
	}

	theme, err := h.state.Theme(r.Context(), id.UserID)
	if err != nil {
		Fail(w, r, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"user_id":       id.UserID,
		"username":      id.Username,
		"session_id":    id.SessionID,
		"theme":         theme,
		"workspace_ttl": int64(user.SessionTTL(h.cfg.Workspace.TTL).Seconds()),
	})
}

// GetConfig returns the settings the frontend needs.
func (h *SessionHandler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"animation_delay_ms": h.cfg.Visual.AnimationDelay.Milliseconds(),
		"visual_capacity":    h.cfg.Visual.Capacity,
		"consoles":           console.Kinds(),
	})
}

// GetProgress lists the visitor's per-structure progress.
func (h *SessionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.state.Progress(r.Context(), identity.UserIDFromContext(r.Context()))
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"progress": progress})
}

type themeRequest struct {
	Theme domain.Theme `json:"theme"`
}

// SetTheme stores the visitor's theme.
func (h *SessionHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, r, err)
		return
	}

	if err := h.state.SetTheme(r.Context(), identity.UserIDFromContext(r.Context()), req.Theme); err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"theme": req.Theme})
}
