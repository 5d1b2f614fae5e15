package visual

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/containerd/errdefs"

	"github.com/ashureev/dslabs/internal/console"
)

const (
	// DefaultDelay is how long an animation is held before it commits.
	DefaultDelay = time.Second
	// DefaultCapacity is the largest number of elements a visualizer holds.
	DefaultCapacity = 8
)

// ErrClosed is returned by operations on a closed animator.
var ErrClosed = fmt.Errorf("visualizer closed: %w", errdefs.ErrUnavailable)

// Phase is the animator state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnimating
)

func (p Phase) String() string {
	if p == PhaseAnimating {
		return "animating"
	}
	return "idle"
}

// Option configures an Animator.
type Option func(*Animator)

// WithScheduler replaces the wall clock.
func WithScheduler(s Scheduler) Option {
	return func(a *Animator) { a.sched = s }
}

// WithDelay sets how long each animation is held.
func WithDelay(d time.Duration) Option {
	return func(a *Animator) { a.delay = d }
}

// WithCapacity sets the element limit. Zero or less removes the limit.
func WithCapacity(n int) Option {
	return func(a *Animator) { a.capacity = n }
}

// WithLogger sets the animator logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.logger = l
		}
	}
}

// Animator is the two-state machine behind a visualizer:
//
//	Idle --Add/Remove--> Animating(target, pending) --delay--> Idle
//
// The sequence only changes on the transition back to Idle. Add and Remove
// are rejected with a busy error while Animating.
type Animator struct {
	mu       sync.Mutex
	desc     *console.Descriptor
	sched    Scheduler
	delay    time.Duration
	capacity int
	logger   *slog.Logger

	seq    console.Sequence
	active *Animation
	last   *Animation
	timer  Timer
	gen    uint64
	closed bool

	subs   map[int]func(Frame)
	nextID int
}

// NewAnimator creates an idle, empty animator for d.
func NewAnimator(d *console.Descriptor, opts ...Option) *Animator {
	a := &Animator{
		desc:     d,
		sched:    WallClock,
		delay:    DefaultDelay,
		capacity: DefaultCapacity,
		logger:   slog.Default(),
		seq:      console.Sequence{},
		subs:     make(map[int]func(Frame)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("structure", string(d.Kind))
	return a
}

// Phase returns the current state.
func (a *Animator) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active != nil {
		return PhaseAnimating
	}
	return PhaseIdle
}

// Frame renders the current state.
func (a *Animator) Frame() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameLocked()
}

func (a *Animator) frameLocked() Frame {
	return Render(a.desc, View{
		Sequence: a.seq,
		Active:   a.active,
		Last:     a.last,
		Capacity: a.capacity,
	})
}

// Add starts animating the insertion of value.
func (a *Animator) Add(value string) (Frame, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.readyLocked(); err != nil {
		return Frame{}, err
	}
	if a.capacity > 0 && a.seq.Len() >= a.capacity {
		w := a.desc.Wording
		return Frame{}, console.NewFullError(w.Title+" cheia",
			fmt.Sprintf("A %s atingiu seu tamanho máximo.", w.Noun))
	}

	next, res, err := console.Dispatch(a.desc, a.seq, console.Request{Op: a.desc.AddOp, Value: value})
	if err != nil {
		return Frame{}, err
	}
	return a.startLocked(&Animation{
		Op:      a.desc.AddOp,
		Target:  a.seq.Len(),
		Value:   res.Output,
		Pending: next,
		Result:  res,
	}), nil
}

// Remove starts animating the removal the structure defines (head for a
// queue or list, top for a stack).
func (a *Animator) Remove() (Frame, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.readyLocked(); err != nil {
		return Frame{}, err
	}

	next, res, err := console.Dispatch(a.desc, a.seq, a.desc.RemoveRequest(a.seq.Len()))
	if err != nil {
		return Frame{}, err
	}
	return a.startLocked(&Animation{
		Op:      a.desc.RemoveOp,
		Target:  a.desc.RemoveAt(a.seq.Len()),
		Value:   res.Output,
		Pending: next,
		Result:  res,
	}), nil
}

func (a *Animator) readyLocked() error {
	if a.closed {
		return ErrClosed
	}
	if a.active != nil {
		return console.NewBusyError()
	}
	return nil
}

func (a *Animator) startLocked(anim *Animation) Frame {
	a.active = anim
	a.gen++
	gen := a.gen
	a.timer = a.sched.AfterFunc(a.delay, func() { a.commit(gen) })

	a.logger.Debug("Animation started", "op", anim.Op, "target", anim.Target, "value", anim.Value)
	f := a.frameLocked()
	a.publishLocked(f)
	return f
}

// commit is the scheduled transition back to Idle. A stale generation means
// the animation was cancelled or superseded.
func (a *Animator) commit(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.active == nil || gen != a.gen {
		return
	}
	a.seq = a.active.Pending
	a.last = a.active
	a.active = nil
	a.timer = nil

	a.logger.Debug("Animation committed", "op", a.last.Op, "size", a.seq.Len())
	a.publishLocked(a.frameLocked())
}

// Reset cancels any animation and empties the visualizer.
func (a *Animator) Reset() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	a.seq = console.Sequence{}
	a.last = nil
	f := a.frameLocked()
	a.publishLocked(f)
	return f
}

func (a *Animator) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.active = nil
	a.gen++
}

// Subscribe registers fn to receive every frame produced from now on. fn is
// called with the animator lock held and must not call back into it.
func (a *Animator) Subscribe(fn func(Frame)) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *Animator) publishLocked(f Frame) {
	for _, fn := range a.subs {
		fn(f)
	}
}

// Close cancels a pending commit and drops all subscribers. The animator
// rejects every later Add or Remove.
func (a *Animator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.cancelLocked()
	a.closed = true
	clear(a.subs)
}
