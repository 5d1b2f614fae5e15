package realtime

import (
	"sync"

	"github.com/ashureev/dslabs/internal/visual"
)

// FrameRing is a fixed-size ring of frames. When full, a push overwrites the
// oldest frame, so a slow client skips intermediate frames instead of
// growing memory without bound.
type FrameRing struct {
	mu      sync.Mutex
	buf     []visual.Frame
	size    int
	head    int // write position
	tail    int // read position
	full    bool
	dropped int
}

// NewFrameRing creates a ring holding at most size frames.
func NewFrameRing(size int) *FrameRing {
	if size <= 0 {
		size = 16
	}
	return &FrameRing{
		buf:  make([]visual.Frame, size),
		size: size,
	}
}

// Push appends f, overwriting the oldest frame when the ring is full.
func (r *FrameRing) Push(f visual.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.full {
		r.tail = (r.tail + 1) % r.size
		r.dropped++
	}
	r.buf[r.head] = f
	r.head = (r.head + 1) % r.size
	r.full = r.head == r.tail
}

// Drain returns every buffered frame, oldest first, and empties the ring.
func (r *FrameRing) Drain() []visual.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lenLocked()
	out := make([]visual.Frame, n)
	for i := range n {
		out[i] = r.buf[(r.tail+i)%r.size]
	}
	r.head, r.tail, r.full = 0, 0, false
	clear(r.buf)
	return out
}

// Len returns the number of buffered frames.
func (r *FrameRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked()
}

func (r *FrameRing) lenLocked() int {
	switch {
	case r.full:
		return r.size
	case r.head >= r.tail:
		return r.head - r.tail
	default:
		return r.size - r.tail + r.head
	}
}

// Dropped returns how many frames were overwritten before being drained.
func (r *FrameRing) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Capacity returns the maximum number of frames held.
func (r *FrameRing) Capacity() int {
	return r.size
}
