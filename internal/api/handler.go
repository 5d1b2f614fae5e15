// Package api provides HTTP handlers for the dslabs API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/containerd/errdefs"

	"github.com/ashureev/dslabs/internal/appstate"
	"github.com/ashureev/dslabs/internal/catalog"
	"github.com/ashureev/dslabs/internal/config"
	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/identity"
	"github.com/ashureev/dslabs/internal/store"
	"github.com/ashureev/dslabs/internal/workspace"
)

const maxBodyBytes = 64 << 10

// Handler provides common handler utilities.
type Handler struct {
	repo    store.Repository
	state   appstate.ReadWriter
	catalog *catalog.Catalog
	spaces  *workspace.Manager
	cfg     *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, state appstate.ReadWriter, cat *catalog.Catalog, spaces *workspace.Manager, cfg *config.Config) *Handler {
	return &Handler{
		repo:    repo,
		state:   state,
		catalog: cat,
		spaces:  spaces,
		cfg:     cfg,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Notification is the body of a rejected operation. The frontend shows it
// as a toast.
type Notification struct {
	Error       string `json:"error"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StatusFor maps an error class onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errdefs.IsInvalidArgument(err), errdefs.IsOutOfRange(err), errdefs.IsFailedPrecondition(err):
		return http.StatusUnprocessableEntity
	case errdefs.IsConflict(err), errdefs.IsResourceExhausted(err):
		return http.StatusConflict
	case errdefs.IsNotFound(err), errdefs.IsNotImplemented(err):
		return http.StatusNotFound
	case errdefs.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as a JSON error. Rejected operations become notifications;
// unclassified errors are logged and hidden from the client.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	if opErr, ok := console.AsOpError(err); ok {
		JSON(w, status, Notification{
			Error:       string(opErr.Kind),
			Title:       opErr.Title,
			Description: opErr.Description,
		})
		return
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", identity.UserIDFromContext(r.Context()),
			"error", err)
		Error(w, status, "internal error")
		return
	}
	Error(w, status, err.Error())
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("malformed request body: %w", errdefs.ErrInvalidArgument)
}

func (h *Handler) workspaceFor(r *http.Request) *workspace.Workspace {
	return h.spaces.Get(workspace.Key{
		UserID:    identity.UserIDFromContext(r.Context()),
		SessionID: identity.SessionIDFromContext(r.Context()),
	})
}
