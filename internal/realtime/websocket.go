package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/identity"
	"github.com/ashureev/dslabs/internal/visual"
	"github.com/ashureev/dslabs/internal/workspace"
)

const (
	outboxSize = 16
	// maxStreams caps the live connections of one tab. A page streams at
	// most one visualizer per structure.
	maxStreams = 6
)

// Handler serves /ws/visual/{structure}: it streams every frame of the
// tab's visualizer and accepts add, remove, reset and ping messages.
type Handler struct {
	spaces        *workspace.Manager
	sm            *SessionManager
	allowedOrigin string
	isDev         bool
	maxStreams    int
}

// NewHandler creates a new WebSocket handler.
func NewHandler(spaces *workspace.Manager, sm *SessionManager, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		spaces:        spaces,
		sm:            sm,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		maxStreams:    maxStreams,
	}
}

// wsMessage is a client message.
type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// serverMessage is everything the server sends.
type serverMessage struct {
	Type        string        `json:"type"`
	Frame       *visual.Frame `json:"frame,omitempty"`
	Text        string        `json:"text,omitempty"`
	Error       string        `json:"error,omitempty"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
}

func frameMessage(f visual.Frame) serverMessage {
	return serverMessage{Type: "frame", Frame: &f, Text: f.Text()}
}

func errorMessage(err error) serverMessage {
	if opErr, ok := console.AsOpError(err); ok {
		return serverMessage{
			Type:        "error",
			Error:       string(opErr.Kind),
			Title:       opErr.Title,
			Description: opErr.Description,
		}
	}
	return serverMessage{Type: "error", Error: "unavailable", Description: err.Error()}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := workspace.Key{
		UserID:    identity.UserIDFromContext(r.Context()),
		SessionID: identity.SessionIDFromContext(r.Context()),
	}
	kind := console.Kind(chi.URLParam(r, "structure"))
	slog.Info("WebSocket connection request", "user_id", key.UserID, "session_id", key.SessionID, "structure", kind, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	if n := h.sm.Count(key); n >= h.maxStreams {
		slog.Warn("Too many visual streams", "user_id", key.UserID, "session_id", key.SessionID, "count", n)
		http.Error(w, "too many visual streams", http.StatusTooManyRequests)
		return
	}

	ws := h.spaces.Get(key)
	if _, err := ws.Frame(kind); err != nil {
		http.Error(w, "structure has no visualizer", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", key.UserID)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", key.UserID)
		}
	}()

	h.sm.Register(key, conn)
	defer h.sm.Unregister(key, conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := newOutbox(outboxSize)
	unsubscribe, err := ws.Subscribe(kind, out.Offer)
	if err != nil {
		return
	}
	defer unsubscribe()

	initial, err := ws.Frame(kind)
	if err != nil {
		return
	}
	out.Offer(initial)

	var (
		wg      sync.WaitGroup
		writeMu sync.Mutex
	)
	send := func(msg serverMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return h.writeJSON(ctx, conn, msg)
	}

	wg.Add(2)

	// Input loop: client -> visualizer.
	go func() {
		defer wg.Done()
		defer cancel()
		h.inputLoop(ctx, conn, key, kind, send)
	}()

	// Output loop: visualizer -> client.
	go func() {
		defer wg.Done()
		defer cancel()
		h.outputLoop(ctx, out, key, send)
	}()

	wg.Wait()
	slog.Info("Visual stream ended", "user_id", key.UserID, "structure", kind)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) inputLoop(ctx context.Context, conn *websocket.Conn, key workspace.Key, kind console.Kind, send func(serverMessage) error) {
	slog.Debug("Starting input loop", "user_id", key.UserID, "structure", kind)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Debug("WebSocket closed", "user_id", key.UserID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", key.UserID)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := send(errorMessage(console.NewInvalidInputError("Mensagem inválida."))); err != nil {
				return
			}
			continue
		}

		// Every message counts as activity for the idle sweeper.
		ws := h.spaces.Get(key)

		switch msg.Type {
		case "add":
			_, err = ws.VisualAdd(kind, msg.Content)
		case "remove":
			_, err = ws.VisualRemove(kind)
		case "reset":
			_, err = ws.VisualReset(kind)
		case "ping":
			err = send(serverMessage{Type: "pong"})
			if err != nil {
				slog.Debug("Failed to send pong", "error", err)
				return
			}
			continue
		default:
			err = console.NewInvalidInputError("Tipo de mensagem desconhecido: " + msg.Type)
		}

		// Successful operations are answered by the frames they publish.
		if err != nil {
			if sendErr := send(errorMessage(err)); sendErr != nil {
				slog.Debug("Failed to send error", "error", sendErr)
				return
			}
		}
	}
}

func (h *Handler) outputLoop(ctx context.Context, out *outbox, key workspace.Key, send func(serverMessage) error) {
	reported := 0
	for {
		frames, err := out.Next(ctx)
		if err != nil {
			return
		}
		for _, f := range frames {
			if err := send(frameMessage(f)); err != nil {
				if ctx.Err() == nil {
					slog.Debug("WebSocket write error", "error", err, "user_id", key.UserID)
				}
				return
			}
		}
		if dropped := out.ring.Dropped(); dropped > reported {
			slog.Debug("Slow visual stream skipped frames",
				"user_id", key.UserID,
				"dropped", dropped-reported,
				"buffer", out.ring.Capacity())
			reported = dropped
		}
	}
}

func (h *Handler) writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
