package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/dslabs/internal/catalog"
	"github.com/ashureev/dslabs/internal/identity"
	"github.com/ashureev/dslabs/internal/visual/visualtest"
	"github.com/ashureev/dslabs/internal/workspace"
)

type streamFixture struct {
	url     string
	sched   *visualtest.Scheduler
	sm      *SessionManager
	spaces  *workspace.Manager
	handler *Handler
}

func newStreamFixture(t *testing.T) streamFixture {
	t.Helper()

	cat, err := catalog.Default(context.Background())
	require.NoError(t, err)

	sched := visualtest.New()
	spaces := workspace.NewManager(cat, nil, workspace.WithScheduler(sched))
	t.Cleanup(spaces.Close)

	sm := NewSessionManager()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sid := req.URL.Query().Get(identity.SessionQueryParam)
			next.ServeHTTP(w, req.WithContext(identity.WithIdentity(req.Context(), "anon_test", sid)))
		})
	})
	h := NewHandler(spaces, sm, "*", true)
	r.Handle("/ws/visual/{structure}", h)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return streamFixture{
		url:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		sched:   sched,
		sm:      sm,
		spaces:  spaces,
		handler: h,
	}
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) serverMessage {
	t.Helper()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg serverMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeMessage(t *testing.T, ctx context.Context, conn *websocket.Conn, msg wsMessage) {
	t.Helper()

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestStreamAddCommitsAfterDelay(t *testing.T) {
	f := newStreamFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, f.url+"/ws/visual/queues?session_id=tab-1")

	initial := readMessage(t, ctx, conn)
	require.Equal(t, "frame", initial.Type)
	require.NotNil(t, initial.Frame)
	assert.Equal(t, 0, initial.Frame.Size)

	writeMessage(t, ctx, conn, wsMessage{Type: "add", Content: "A"})
	animating := readMessage(t, ctx, conn)
	require.Equal(t, "frame", animating.Type)
	assert.True(t, animating.Frame.Animating)

	writeMessage(t, ctx, conn, wsMessage{Type: "remove"})
	busy := readMessage(t, ctx, conn)
	assert.Equal(t, "error", busy.Type)
	assert.Equal(t, "busy", busy.Error)

	f.sched.Advance(time.Second)
	committed := readMessage(t, ctx, conn)
	require.Equal(t, "frame", committed.Type)
	assert.False(t, committed.Frame.Animating)
	assert.Equal(t, 1, committed.Frame.Size)
	assert.Contains(t, committed.Text, "[A]")
}

func TestStreamPingAndBadMessages(t *testing.T) {
	f := newStreamFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, f.url+"/ws/visual/stacks")
	readMessage(t, ctx, conn)

	writeMessage(t, ctx, conn, wsMessage{Type: "ping"})
	assert.Equal(t, "pong", readMessage(t, ctx, conn).Type)

	writeMessage(t, ctx, conn, wsMessage{Type: "add", Content: "   "})
	msg := readMessage(t, ctx, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "invalid_input", msg.Error)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))
	assert.Equal(t, "invalid_input", readMessage(t, ctx, conn).Error)

	writeMessage(t, ctx, conn, wsMessage{Type: "explode"})
	assert.Equal(t, "invalid_input", readMessage(t, ctx, conn).Error)
}

func TestStreamUnknownStructure(t *testing.T) {
	f := newStreamFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, f.url+"/ws/visual/graphs", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamClosedWhenWorkspaceSwept(t *testing.T) {
	f := newStreamFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, f.url+"/ws/visual/lists?session_id=tab-9")
	readMessage(t, ctx, conn)

	key := workspace.Key{UserID: "anon_test", SessionID: "tab-9"}
	require.Eventually(t, func() bool { return f.sm.Count(key) == 1 }, time.Second, 10*time.Millisecond)

	// Closing waits for the client's half of the handshake, so it cannot run
	// on the reading goroutine.
	go f.sm.CloseSession(key)

	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	assert.Eventually(t, func() bool { return f.sm.Count(key) == 0 }, time.Second, 10*time.Millisecond)
}

func TestStreamLimitPerTab(t *testing.T) {
	f := newStreamFixture(t)
	f.handler.maxStreams = 1
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, f.url+"/ws/visual/queues?session_id=tab-1")
	readMessage(t, ctx, conn)
	key := workspace.Key{UserID: "anon_test", SessionID: "tab-1"}
	assert.Equal(t, 1, f.sm.Count(key))

	_, resp, err := websocket.Dial(ctx, f.url+"/ws/visual/stacks?session_id=tab-1", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	other := dial(t, ctx, f.url+"/ws/visual/stacks?session_id=tab-2")
	assert.Equal(t, "frame", readMessage(t, ctx, other).Type)
}
