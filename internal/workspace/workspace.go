// Package workspace keeps one isolated set of consoles, visualizers and
// exercise progress per visitor tab.
package workspace

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/oklog/ulid/v2"

	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/exercise"
	"github.com/ashureev/dslabs/internal/visual"
)

// ErrClosed is returned by operations on a workspace the sweeper dropped.
// A later Manager.Get for the same key yields a fresh workspace.
var ErrClosed = fmt.Errorf("workspace closed: %w", errdefs.ErrUnavailable)

// Key identifies a workspace: one visitor, one browser tab.
type Key struct {
	UserID    string
	SessionID string
}

func (k Key) String() string { return k.UserID + ":" + k.SessionID }

// Workspace is the state of one tab. All mutations go through its mutex,
// one at a time.
type Workspace struct {
	mu        sync.Mutex
	id        string
	key       Key
	consoles  map[console.Kind]*console.Console
	animators map[console.Kind]*visual.Animator
	board     *exercise.Board
	logger    *slog.Logger
	closed    bool
}

// ID returns the workspace instance id.
func (w *Workspace) ID() string { return w.id }

// Key returns the owner of the workspace.
func (w *Workspace) Key() Key { return w.key }

func unknownStructure(kind console.Kind) error {
	return fmt.Errorf("structure %q has no console: %w", kind, errdefs.ErrNotFound)
}

func (w *Workspace) console(kind console.Kind) (*console.Console, error) {
	if w.closed {
		return nil, ErrClosed
	}
	c, ok := w.consoles[kind]
	if !ok {
		return nil, unknownStructure(kind)
	}
	return c, nil
}

func (w *Workspace) animator(kind console.Kind) (*visual.Animator, error) {
	if w.closed {
		return nil, ErrClosed
	}
	a, ok := w.animators[kind]
	if !ok {
		return nil, unknownStructure(kind)
	}
	return a, nil
}

// Snapshot returns the console state of kind.
func (w *Workspace) Snapshot(kind console.Kind) (console.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.console(kind)
	if err != nil {
		return console.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Execute runs req on the console of kind.
func (w *Workspace) Execute(kind console.Kind, req console.Request) (console.Outcome, console.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.console(kind)
	if err != nil {
		return console.Outcome{}, console.Snapshot{}, err
	}
	out, err := c.Execute(req)
	if err != nil {
		return console.Outcome{}, console.Snapshot{}, err
	}
	return out, c.Snapshot(), nil
}

// ResetConsole restarts the console of kind.
func (w *Workspace) ResetConsole(kind console.Kind) (console.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.console(kind)
	if err != nil {
		return console.Snapshot{}, err
	}
	c.Reset()
	return c.Snapshot(), nil
}

// Hint returns the next hint for a challenge of kind.
func (w *Workspace) Hint(kind console.Kind, challengeID int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.console(kind)
	if err != nil {
		return "", err
	}
	hint, ok := c.NextHint(challengeID)
	if !ok {
		return "", fmt.Errorf("challenge %d: %w", challengeID, errdefs.ErrNotFound)
	}
	return hint, nil
}

// Frame renders the visualizer of kind.
func (w *Workspace) Frame(kind console.Kind) (visual.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, err := w.animator(kind)
	if err != nil {
		return visual.Frame{}, err
	}
	return a.Frame(), nil
}

// VisualAdd starts an add animation on the visualizer of kind.
func (w *Workspace) VisualAdd(kind console.Kind, value string) (visual.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, err := w.animator(kind)
	if err != nil {
		return visual.Frame{}, err
	}
	return a.Add(value)
}

// VisualRemove starts a remove animation on the visualizer of kind.
func (w *Workspace) VisualRemove(kind console.Kind) (visual.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, err := w.animator(kind)
	if err != nil {
		return visual.Frame{}, err
	}
	return a.Remove()
}

// VisualReset empties the visualizer of kind.
func (w *Workspace) VisualReset(kind console.Kind) (visual.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, err := w.animator(kind)
	if err != nil {
		return visual.Frame{}, err
	}
	return a.Reset(), nil
}

// Subscribe streams every frame of the visualizer of kind to fn.
func (w *Workspace) Subscribe(kind console.Kind, fn func(visual.Frame)) (cancel func(), err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, err := w.animator(kind)
	if err != nil {
		return nil, err
	}
	return a.Subscribe(fn), nil
}

// Exercises lists the stack exercises with their completion.
func (w *Workspace) Exercises() []exercise.Info {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.board.Exercises()
}

// Submit runs one exercise attempt.
func (w *Workspace) Submit(id exercise.ID, sub exercise.Submission) (exercise.Attempt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return exercise.Attempt{}, ErrClosed
	}
	return w.board.Submit(id, sub)
}

// ExerciseProgress returns how many stack exercises are done.
func (w *Workspace) ExerciseProgress() (done, total int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.board.Progress()
}

// ResetExercises clears the exercise board.
func (w *Workspace) ResetExercises() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return "", ErrClosed
	}
	return w.board.Reset(), nil
}

// Close stops every pending animation. Every later console, visualizer or
// exercise operation fails with ErrClosed.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	for _, a := range w.animators {
		a.Close()
	}
	w.logger.Debug("Workspace closed")
}

func newWorkspace(key Key, m *Manager) *Workspace {
	w := &Workspace{
		id:        ulid.Make().String(),
		key:       key,
		consoles:  make(map[console.Kind]*console.Console),
		animators: make(map[console.Kind]*visual.Animator),
	}
	w.logger = m.logger.With("workspace_id", w.id, "user_id", key.UserID, "session_id", key.SessionID)

	for _, kind := range console.Kinds() {
		d, _ := console.Lookup(kind)
		w.consoles[kind] = console.New(d,
			console.WithLogger(w.logger),
			console.WithChallengeTexts(m.catalog.Challenges(string(kind))),
			console.OnAllCompleted(func(k console.Kind) { m.complete(key, string(k)) }),
		)
		w.animators[kind] = visual.NewAnimator(d,
			visual.WithScheduler(m.sched),
			visual.WithDelay(m.delay),
			visual.WithCapacity(m.capacity),
			visual.WithLogger(w.logger),
		)
	}
	w.board = exercise.NewBoard(func() { m.complete(key, string(console.KindStack)) }, w.logger)
	return w
}
