// Package realtime streams visualizer frames to the browser over WebSocket.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/ashureev/dslabs/internal/workspace"
)

// SessionManager tracks the live connections of each workspace.
type SessionManager struct {
	mu     sync.RWMutex
	active map[workspace.Key]map[*websocket.Conn]struct{}
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[workspace.Key]map[*websocket.Conn]struct{}),
	}
}

// Count returns the number of live connections for key.
func (m *SessionManager) Count(key workspace.Key) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active[key])
}

// Register adds a connection for key. A tab may stream several structures
// at once, so connections do not replace each other.
func (m *SessionManager) Register(key workspace.Key, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[key]; !exists {
		m.active[key] = make(map[*websocket.Conn]struct{})
	}
	m.active[key][conn] = struct{}{}
	slog.Info("Visual stream registered", "user_id", key.UserID, "session_id", key.SessionID)
}

// Unregister removes a connection.
func (m *SessionManager) Unregister(key workspace.Key, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.active[key]
	if !ok {
		return
	}
	if _, exists := conns[conn]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(m.active, key)
		}
		slog.Info("Visual stream unregistered", "user_id", key.UserID, "session_id", key.SessionID)
	}
}

// CloseSession terminates every connection of a workspace. It is the
// sweeper's callback for dropped workspaces.
func (m *SessionManager) CloseSession(key workspace.Key) {
	m.mu.Lock()
	conns := m.active[key]
	delete(m.active, key)
	m.mu.Unlock()

	for conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, "workspace expired")
	}
	if len(conns) > 0 {
		slog.Info("Visual streams closed", "user_id", key.UserID, "session_id", key.SessionID, "count", len(conns))
	}
}
