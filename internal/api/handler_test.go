//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/containerd/errdefs"

	"github.com/ashureev/dslabs/internal/console"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestStatusFor(t *testing.T) {
	busy := console.NewBusyError()
	full := console.NewFullError("Fila cheia", "A fila atingiu seu tamanho máximo.")

	tests := map[string]struct {
		err  error
		want int
	}{
		"invalid input":  {console.NewInvalidInputError("x"), http.StatusUnprocessableEntity},
		"busy":           {busy, http.StatusConflict},
		"full":           {full, http.StatusConflict},
		"wrapped busy":   {fmt.Errorf("add: %w", busy), http.StatusConflict},
		"not found":      {fmt.Errorf("x: %w", errdefs.ErrNotFound), http.StatusNotFound},
		"unavailable":    {errdefs.ErrUnavailable, http.StatusServiceUnavailable},
		"unclassified":   {errors.New("boom"), http.StatusInternalServerError},
		"out of range":   {errdefs.ErrOutOfRange, http.StatusUnprocessableEntity},
		"empty sequence": {errdefs.ErrFailedPrecondition, http.StatusUnprocessableEntity},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFailWritesNotification(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/consoles/queues/ops", nil)

	Fail(w, r, console.NewBusyError())

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", w.Code)
	}
	var got Notification
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.Error != string(console.KindBusy) || got.Title == "" || got.Description == "" {
		t.Errorf("unexpected notification %+v", got)
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/progress", nil)

	Fail(w, r, errors.New("sql: connection refused"))

	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "internal error" {
		t.Errorf("internal error leaked: %q", got["error"])
	}
}
