package console

import (
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ashureev/dslabs/internal/domain"
)

// CompletionFunc is called once each time the last pending challenge of a
// console is completed.
type CompletionFunc func(kind Kind)

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the console logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithChallengeTexts overrides challenge descriptions and attaches hints,
// keyed by challenge id.
func WithChallengeTexts(texts []domain.Challenge) Option {
	return func(c *Console) {
		for _, t := range texts {
			c.texts[t.ID] = &t
		}
	}
}

// OnAllCompleted registers fn to run when every challenge is done.
func OnAllCompleted(fn CompletionFunc) Option {
	return func(c *Console) { c.onAllDone = fn }
}

// OperationInfo describes one entry of the operation menu.
type OperationInfo struct {
	Op         Op     `json:"op"`
	Label      string `json:"label"`
	NeedsValue bool   `json:"needs_value"`
	NeedsIndex bool   `json:"needs_index"`
	Mutates    bool   `json:"mutates"`
}

// Snapshot is the renderable state of a console.
type Snapshot struct {
	ID         string           `json:"id"`
	Kind       Kind             `json:"kind"`
	Sequence   Sequence         `json:"sequence"`
	Result     string           `json:"result,omitempty"`
	Operations []OperationInfo  `json:"operations"`
	Challenges []ChallengeState `json:"challenges"`
}

// Outcome is what Execute reports for a successful operation.
type Outcome struct {
	Result       Result `json:"result"`
	Completed    []int  `json:"completed,omitempty"`
	AllCompleted bool   `json:"all_completed"`
}

// Console is the state container for one structure page: the sequence, the
// last result message and the challenge tracker. It is safe for concurrent
// use; operations are applied one at a time.
type Console struct {
	mu        sync.Mutex
	id        string
	desc      *Descriptor
	seq       Sequence
	result    string
	tracker   *Tracker
	texts     map[int]*domain.Challenge
	onAllDone CompletionFunc
	logger    *slog.Logger
}

// New creates an empty console for d.
func New(d *Descriptor, opts ...Option) *Console {
	c := &Console{
		id:      ulid.Make().String(),
		desc:    d,
		seq:     Sequence{},
		tracker: NewTracker(d.Rules),
		texts:   make(map[int]*domain.Challenge),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("console_id", c.id, "structure", string(d.Kind))
	return c
}

// ID returns the console instance id.
func (c *Console) ID() string { return c.id }

// Kind returns the structure kind.
func (c *Console) Kind() Kind { return c.desc.Kind }

// Execute dispatches req. Rejected operations leave every piece of state,
// including the previous result message, untouched.
func (c *Console) Execute(req Request) (Outcome, error) {
	out, justFinished, err := c.apply(req)
	if err != nil {
		return Outcome{}, err
	}
	if justFinished && c.onAllDone != nil {
		c.onAllDone(c.desc.Kind)
	}
	return out, nil
}

func (c *Console) apply(req Request) (Outcome, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.seq
	next, res, err := Dispatch(c.desc, before, req)
	if err != nil {
		c.logger.Debug("Operation rejected", "op", req.Op, "error", err)
		return Outcome{}, false, err
	}

	c.seq = next
	c.result = res.Message

	wasDone := c.tracker.AllCompleted()
	completed := c.tracker.Observe(Event{
		Op:     req.Op,
		Value:  req.Value,
		Index:  req.Index,
		Before: before,
		After:  next,
		Output: res.Output,
	})
	allDone := c.tracker.AllCompleted()

	if len(completed) > 0 {
		c.logger.Info("Challenges completed", "ids", completed, "all_completed", allDone)
	}

	return Outcome{Result: res, Completed: completed, AllCompleted: allDone}, allDone && !wasDone, nil
}

// Reset clears the sequence and the result and returns every challenge to
// pending, as a single step.
func (c *Console) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq = Sequence{}
	c.result = ""
	c.tracker.Reset()
	for _, t := range c.texts {
		t.ResetHints()
	}
	c.logger.Info("Console reset")
}

// NextHint returns the next hint for challenge id, or "" when none remain.
func (c *Console) NextHint(id int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.texts[id]
	if !ok {
		return "", false
	}
	return t.NextHint(), true
}

// Sequence returns a copy of the current contents.
func (c *Console) Sequence() Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq.Clone()
}

// Snapshot returns the current renderable state.
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := c.tracker.States()
	for i := range states {
		if t, ok := c.texts[states[i].ID]; ok {
			if t.Description != "" {
				states[i].Description = t.Description
			}
			states[i].HasHints = t.HasHints()
		}
	}

	return Snapshot{
		ID:         c.id,
		Kind:       c.desc.Kind,
		Sequence:   c.seq.Clone(),
		Result:     c.result,
		Operations: c.desc.Menu(),
		Challenges: states,
	}
}

// Menu lists the descriptor's operations in table order.
func (d *Descriptor) Menu() []OperationInfo {
	out := make([]OperationInfo, len(d.Ops))
	for i, spec := range d.Ops {
		out[i] = OperationInfo{
			Op:         spec.Op,
			Label:      spec.Label,
			NeedsValue: spec.NeedsValue,
			NeedsIndex: spec.NeedsIndex,
			Mutates:    spec.Mutates,
		}
	}
	return out
}
