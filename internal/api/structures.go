package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/go-chi/chi/v5"

	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/domain"
	"github.com/ashureev/dslabs/internal/identity"
	"github.com/ashureev/dslabs/internal/visual"
)

// StructureHandler handles the catalog, console and visualizer endpoints.
type StructureHandler struct {
	*Handler
}

// NewStructureHandler creates a new structure handler.
func NewStructureHandler(base *Handler) *StructureHandler {
	return &StructureHandler{Handler: base}
}

// RegisterRoutes registers structure routes.
func (h *StructureHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/structures", func(r chi.Router) {
		r.Get("/", h.ListStructures)
		r.Get("/{structure}", h.GetStructure)
	})
	r.Route("/api/consoles/{structure}", func(r chi.Router) {
		r.Get("/", h.GetConsole)
		r.Post("/ops", h.Execute)
		r.Post("/reset", h.ResetConsole)
		r.Get("/challenges/{challenge}/hint", h.Hint)
	})
	r.Route("/api/visual/{structure}", func(r chi.Router) {
		r.Get("/", h.GetFrame)
		r.Post("/add", h.VisualAdd)
		r.Post("/remove", h.VisualRemove)
		r.Post("/reset", h.VisualReset)
	})
}

type structureView struct {
	domain.Structure
	Completed bool `json:"completed"`
}

func structureKind(r *http.Request) console.Kind {
	return console.Kind(chi.URLParam(r, "structure"))
}

func (h *StructureHandler) completedSet(r *http.Request) (map[string]bool, error) {
	progress, err := h.state.Progress(r.Context(), identity.UserIDFromContext(r.Context()))
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(progress))
	for _, p := range progress {
		done[p.StructureID] = p.Completed
	}
	return done, nil
}

// ListStructures returns the catalog with the visitor's completion flags.
func (h *StructureHandler) ListStructures(w http.ResponseWriter, r *http.Request) {
	done, err := h.completedSet(r)
	if err != nil {
		Fail(w, r, err)
		return
	}

	structures := h.catalog.Structures()
	out := make([]structureView, len(structures))
	for i, s := range structures {
		out[i] = structureView{Structure: s, Completed: done[s.ID]}
	}
	JSON(w, http.StatusOK, map[string]any{"structures": out})
}

// GetStructure returns one catalog entry and records the visit.
func (h *StructureHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "structure")
	s, err := h.catalog.Structure(id)
	if err != nil {
		Fail(w, r, err)
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	if err := h.state.Visit(r.Context(), userID, id); err != nil {
		slog.Warn("Failed to record structure visit", "user_id", userID, "structure", id, "error", err)
	}

	done, err := h.state.IsCompleted(r.Context(), userID, id)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"structure":  structureView{Structure: s, Completed: done},
		"challenges": h.catalog.Challenges(id),
	})
}

// GetConsole returns the console state of the visitor's tab.
func (h *StructureHandler) GetConsole(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspaceFor(r).Snapshot(structureKind(r))
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

// Execute dispatches one operation.
func (h *StructureHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req console.Request
	if err := decode(w, r, &req); err != nil {
		Fail(w, r, err)
		return
	}

	out, snap, err := h.workspaceFor(r).Execute(structureKind(r), req)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"outcome": out,
		"console": snap,
	})
}

// ResetConsole clears the sequence, the result and every challenge.
func (h *StructureHandler) ResetConsole(w http.ResponseWriter, r *http.Request) {
	snap, err := h.workspaceFor(r).ResetConsole(structureKind(r))
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

// Hint returns the next hint for a challenge.
func (h *StructureHandler) Hint(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "challenge"))
	if err != nil {
		Fail(w, r, fmt.Errorf("challenge %q: %w", chi.URLParam(r, "challenge"), errdefs.ErrNotFound))
		return
	}

	hint, err := h.workspaceFor(r).Hint(structureKind(r), id)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"hint":      hint,
		"exhausted": hint == "",
	})
}

type frameView struct {
	visual.Frame
	Text string `json:"text"`
}

func writeFrame(w http.ResponseWriter, f visual.Frame) {
	JSON(w, http.StatusOK, frameView{Frame: f, Text: f.Text()})
}

// GetFrame renders the visualizer.
func (h *StructureHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	f, err := h.workspaceFor(r).Frame(structureKind(r))
	if err != nil {
		Fail(w, r, err)
		return
	}
	writeFrame(w, f)
}

type addRequest struct {
	Value string `json:"value"`
}

// VisualAdd starts an add animation. The element is committed after the
// animation delay; the response is the first animating frame.
func (h *StructureHandler) VisualAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, r, err)
		return
	}

	f, err := h.workspaceFor(r).VisualAdd(structureKind(r), req.Value)
	if err != nil {
		Fail(w, r, err)
		return
	}
	writeFrame(w, f)
}

// VisualRemove starts a remove animation.
func (h *StructureHandler) VisualRemove(w http.ResponseWriter, r *http.Request) {
	f, err := h.workspaceFor(r).VisualRemove(structureKind(r))
	if err != nil {
		Fail(w, r, err)
		return
	}
	writeFrame(w, f)
}

// VisualReset empties the visualizer.
func (h *StructureHandler) VisualReset(w http.ResponseWriter, r *http.Request) {
	f, err := h.workspaceFor(r).VisualReset(structureKind(r))
	if err != nil {
		Fail(w, r, err)
		return
	}
	writeFrame(w, f)
}
