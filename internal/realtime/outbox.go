package realtime

import (
	"context"

	"github.com/ashureev/dslabs/internal/visual"
)

// outbox decouples the animator, which publishes frames while holding its
// lock, from the websocket writer. Offer never blocks.
type outbox struct {
	ring   *FrameRing
	notify chan struct{}
}

func newOutbox(size int) *outbox {
	return &outbox{
		ring:   NewFrameRing(size),
		notify: make(chan struct{}, 1),
	}
}

// Offer queues f and wakes the writer.
func (o *outbox) Offer(f visual.Frame) {
	o.ring.Push(f)
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// Next blocks until frames are queued or ctx is done.
func (o *outbox) Next(ctx context.Context) ([]visual.Frame, error) {
	for {
		if frames := o.ring.Drain(); len(frames) > 0 {
			return frames, nil
		}
		select {
		case <-o.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
