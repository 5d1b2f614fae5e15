package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/dslabs/internal/appstate"
	"github.com/ashureev/dslabs/internal/catalog"
	"github.com/ashureev/dslabs/internal/visual"
)

const completionTimeout = 5 * time.Second

// Option configures a Manager.
type Option func(*Manager)

// WithScheduler sets the clock that drives visualizer animations.
func WithScheduler(s visual.Scheduler) Option {
	return func(m *Manager) { m.sched = s }
}

// WithAnimationDelay sets how long each animation is held.
func WithAnimationDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

// WithCapacity sets the visualizer element limit.
func WithCapacity(n int) Option {
	return func(m *Manager) { m.capacity = n }
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now for idle bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

type entry struct {
	ws       *Workspace
	lastSeen time.Time
}

// Manager owns every live workspace.
type Manager struct {
	mu     sync.Mutex
	spaces map[Key]*entry

	catalog  *catalog.Catalog
	state    appstate.Writer
	sched    visual.Scheduler
	delay    time.Duration
	capacity int
	now      func() time.Time
	logger   *slog.Logger
}

// NewManager creates an empty manager. Structure completions are written
// to state.
func NewManager(cat *catalog.Catalog, state appstate.Writer, opts ...Option) *Manager {
	m := &Manager{
		spaces:   make(map[Key]*entry),
		catalog:  cat,
		state:    state,
		sched:    visual.WallClock,
		delay:    visual.DefaultDelay,
		capacity: visual.DefaultCapacity,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("svc", "workspace.Manager")
	return m
}

// Get returns the workspace for key, creating it on first use, and marks
// it as seen.
func (m *Manager) Get(key Key) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.spaces[key]
	if !ok {
		e = &entry{ws: newWorkspace(key, m)}
		m.spaces[key] = e
		m.logger.Info("Workspace created", "user_id", key.UserID, "session_id", key.SessionID, "workspace_id", e.ws.id)
	}
	e.lastSeen = m.now()
	return e.ws
}

// Lookup returns the workspace for key without creating or touching it.
func (m *Manager) Lookup(key Key) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.spaces[key]
	if !ok {
		return nil, false
	}
	return e.ws, true
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spaces)
}

// Sweep drops and closes every workspace unseen for longer than ttl and
// returns their keys.
func (m *Manager) Sweep(ttl time.Duration) []Key {
	threshold := m.now().Add(-ttl)

	m.mu.Lock()
	var expired []*Workspace
	for key, e := range m.spaces {
		if e.lastSeen.Before(threshold) {
			expired = append(expired, e.ws)
			delete(m.spaces, key)
		}
	}
	m.mu.Unlock()

	keys := make([]Key, 0, len(expired))
	for _, ws := range expired {
		ws.Close()
		keys = append(keys, ws.key)
	}
	return keys
}

// Close drops every workspace.
func (m *Manager) Close() {
	m.mu.Lock()
	spaces := m.spaces
	m.spaces = make(map[Key]*entry)
	m.mu.Unlock()

	for _, e := range spaces {
		e.ws.Close()
	}
	m.logger.Info("Workspace manager closed", "closed", len(spaces))
}

func (m *Manager) complete(key Key, structureID string) {
	if m.state == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	if err := m.state.MarkCompleted(ctx, key.UserID, structureID); err != nil {
		m.logger.Error("Failed to record structure completion",
			"user_id", key.UserID,
			"structure", structureID,
			"error", err)
	}
}
