package console

import "sync"

// Event is what the tracker sees after a successful operation.
type Event struct {
	Op     Op
	Value  string
	Index  *int
	Before Sequence
	After  Sequence
	Output string
}

func (e Event) indexIs(i int) bool {
	return e.Index != nil && *e.Index == i
}

// Rule is one scripted challenge. Match is only consulted for events whose
// Op equals the rule's Op, and only while the challenge is pending.
type Rule struct {
	ID          int
	Description string
	Op          Op
	Expected    string
	Match       func(Event) bool
}

// ChallengeState is the public view of one challenge.
type ChallengeState struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Op          Op     `json:"type"`
	Expected    string `json:"expected_output,omitempty"`
	Completed   bool   `json:"completed"`
	HasHints    bool   `json:"has_hints,omitempty"`
}

// Tracker holds the completion flags for a rule table. Completion is
// monotonic: only Reset returns a challenge to pending.
type Tracker struct {
	mu    sync.Mutex
	rules []Rule
	done  []bool
}

// NewTracker creates a tracker with every challenge pending.
func NewTracker(rules []Rule) *Tracker {
	return &Tracker{
		rules: rules,
		done:  make([]bool, len(rules)),
	}
}

// Observe evaluates the pending rules against ev and returns the ids that
// flipped to completed.
func (t *Tracker) Observe(ev Event) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var completed []int
	for i, r := range t.rules {
		if t.done[i] || r.Op != ev.Op {
			continue
		}
		if r.Match(ev) {
			t.done[i] = true
			completed = append(completed, r.ID)
		}
	}
	return completed
}

// Reset returns every challenge to pending.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.done)
}

// AllCompleted reports whether every challenge is done.
func (t *Tracker) AllCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range t.done {
		if !d {
			return false
		}
	}
	return len(t.done) > 0
}

// States returns a snapshot of every challenge in table order.
func (t *Tracker) States() []ChallengeState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ChallengeState, len(t.rules))
	for i, r := range t.rules {
		out[i] = ChallengeState{
			ID:          r.ID,
			Description: r.Description,
			Op:          r.Op,
			Expected:    r.Expected,
			Completed:   t.done[i],
		}
	}
	return out
}

// The scripts below follow the original course material. Enqueue-style
// rules look at the sequence as it was before the element went in.

func queueRules() []Rule {
	return []Rule{
		{
			ID:          1,
			Description: "Adicione os elementos 'A', 'B' e 'C' à fila (nesta ordem).",
			Op:          OpEnqueue,
			Match: func(e Event) bool {
				return e.Value == "C" && e.Before.Len() >= 2 && e.Before.Contains("A") && e.Before.Contains("B")
			},
		},
		{
			ID:          2,
			Description: "Remova o elemento do início da fila.",
			Op:          OpDequeue,
			Expected:    "A",
			Match:       func(e Event) bool { return e.Output == "A" },
		},
		{
			ID:          3,
			Description: "Verifique qual elemento está no início da fila agora.",
			Op:          OpFront,
			Expected:    "B",
			Match:       func(e Event) bool { return e.Output == "B" },
		},
		{
			ID:          4,
			Description: "Adicione os elementos 'D' e 'E' à fila.",
			Op:          OpEnqueue,
			Match:       pairAdded("D", "E"),
		},
		{
			ID:          5,
			Description: "Verifique quantos elementos a fila possui atualmente.",
			Op:          OpSize,
			Expected:    "4",
			Match:       func(e Event) bool { return e.After.Len() == 4 },
		},
		{
			ID:          6,
			Description: "Remova todos os elementos da fila e verifique se está vazia.",
			Op:          OpIsEmpty,
			Expected:    "true",
			Match:       func(e Event) bool { return e.After.Len() == 0 },
		},
	}
}

func stackRules() []Rule {
	return []Rule{
		{
			ID:          1,
			Description: "Adicione os elementos 'X', 'Y' e 'Z' à pilha (nesta ordem).",
			Op:          OpPush,
			Match: func(e Event) bool {
				return e.Value == "Z" && e.Before.Len() >= 2 && e.Before.Contains("X") && e.Before.Contains("Y")
			},
		},
		{
			ID:          2,
			Description: "Remova o elemento do topo da pilha.",
			Op:          OpPop,
			Expected:    "Z",
			Match:       func(e Event) bool { return e.Output == "Z" },
		},
		{
			ID:          3,
			Description: "Verifique qual elemento está no topo da pilha agora.",
			Op:          OpPeek,
			Expected:    "Y",
			Match:       func(e Event) bool { return e.Output == "Y" },
		},
		{
			ID:          4,
			Description: "Adicione os elementos 'W' e 'V' à pilha.",
			Op:          OpPush,
			Match:       pairAdded("W", "V"),
		},
		{
			ID:          5,
			Description: "Verifique quantos elementos a pilha possui atualmente.",
			Op:          OpSize,
			Expected:    "4",
			Match:       func(e Event) bool { return e.After.Len() == 4 },
		},
		{
			ID:          6,
			Description: "Esvazie a pilha usando pop e depois verifique se está vazia.",
			Op:          OpIsEmpty,
			Expected:    "true",
			Match:       func(e Event) bool { return e.After.Len() == 0 },
		},
	}
}

func listRules() []Rule {
	return []Rule{
		{
			ID:          1,
			Description: "Adicione os elementos 'A', 'B' e 'C' ao final da lista.",
			Op:          OpAdd,
			Match: func(e Event) bool {
				return e.Value == "C" && e.Before.Contains("A") && e.Before.Contains("B")
			},
		},
		{
			ID:          2,
			Description: "Insira o elemento 'X' na posição 1 da lista.",
			Op:          OpInsert,
			Match:       func(e Event) bool { return e.Value == "X" && e.indexIs(1) },
		},
		{
			ID:          3,
			Description: "Obtenha o elemento que está na posição 2 da lista.",
			Op:          OpGet,
			Match:       func(e Event) bool { return e.indexIs(2) && e.After.Len() > 2 },
		},
		{
			ID:          4,
			Description: "Remova o elemento da posição 0 da lista.",
			Op:          OpRemove,
			Match:       func(e Event) bool { return e.indexIs(0) },
		},
		{
			ID:          5,
			Description: "Em qual posição está o elemento 'B'? Use indexOf.",
			Op:          OpIndexOf,
			Match:       func(e Event) bool { return e.Value == "B" && e.Before.Contains("B") },
		},
		{
			ID:          6,
			Description: "Verifique quantos elementos a lista possui atualmente.",
			Op:          OpSize,
			Match:       func(Event) bool { return true },
		},
	}
}

// pairAdded matches the second of two values going in, in either order.
func pairAdded(a, b string) func(Event) bool {
	return func(e Event) bool {
		return (e.Value == a && e.Before.Contains(b)) || (e.Value == b && e.Before.Contains(a))
	}
}
