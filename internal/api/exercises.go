package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/dslabs/internal/exercise"
	"github.com/ashureev/dslabs/internal/workspace"
)

// ExerciseHandler handles the stack exercise board.
type ExerciseHandler struct {
	*Handler
}

// NewExerciseHandler creates a new exercise handler.
func NewExerciseHandler(base *Handler) *ExerciseHandler {
	return &ExerciseHandler{Handler: base}
}

// RegisterRoutes registers exercise routes.
func (h *ExerciseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/exercises/stacks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/reset", h.Reset)
		r.Post("/{exercise}", h.Submit)
	})
}

func boardView(ws *workspace.Workspace) map[string]any {
	done, total := ws.ExerciseProgress()
	return map[string]any{
		"exercises": ws.Exercises(),
		"completed": done,
		"total":     total,
	}
}

// List returns the board with completion flags.
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, boardView(h.workspaceFor(r)))
}

// Submit runs one attempt.
func (h *ExerciseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub exercise.Submission
	if err := decode(w, r, &sub); err != nil {
		Fail(w, r, err)
		return
	}

	att, err := h.workspaceFor(r).Submit(exercise.ID(chi.URLParam(r, "exercise")), sub)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, att)
}

// Reset clears the board.
func (h *ExerciseHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ws := h.workspaceFor(r)
	notice, err := ws.ResetExercises()
	if err != nil {
		Fail(w, r, err)
		return
	}

	resp := boardView(ws)
	resp["notice"] = notice
	JSON(w, http.StatusOK, resp)
}
