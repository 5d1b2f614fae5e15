// Package visualtest provides a manually driven scheduler for animator tests.
package visualtest

import (
	"sort"
	"sync"
	"time"

	"github.com/ashureev/dslabs/internal/visual"
)

// Scheduler is a visual.Scheduler whose clock only moves on Advance.
// Callbacks run synchronously on the goroutine calling Advance.
type Scheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*timer
}

var _ visual.Scheduler = (*Scheduler)(nil)

type timer struct {
	s       *Scheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// New returns a scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{}
}

// AfterFunc implements visual.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) visual.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &timer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Advance moves the clock forward by d and runs every callback due, in
// deadline order.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*timer
	keep := s.pending[:0]
	for _, t := range s.pending {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.fired = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	s.pending = keep
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of callbacks waiting to run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}
