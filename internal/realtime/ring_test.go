package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/dslabs/internal/visual"
)

func frameOfSize(n int) visual.Frame {
	return visual.Frame{Size: n}
}

func sizes(frames []visual.Frame) []int {
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = f.Size
	}
	return out
}

func TestFrameRing(t *testing.T) {
	tests := map[string]struct {
		capacity    int
		push        int
		expSizes    []int
		expDropped  int
		expCapacity int
	}{
		"empty": {
			capacity: 3, push: 0, expSizes: []int{}, expCapacity: 3,
		},
		"partial": {
			capacity: 3, push: 2, expSizes: []int{0, 1}, expCapacity: 3,
		},
		"exactly full": {
			capacity: 3, push: 3, expSizes: []int{0, 1, 2}, expCapacity: 3,
		},
		"overwrites oldest": {
			capacity: 3, push: 5, expSizes: []int{2, 3, 4}, expDropped: 2, expCapacity: 3,
		},
		"default capacity": {
			capacity: 0, push: 1, expSizes: []int{0}, expCapacity: 16,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			r := NewFrameRing(test.capacity)
			for i := range test.push {
				r.Push(frameOfSize(i))
			}

			assert.Equal(len(test.expSizes), r.Len())
			assert.Equal(test.expSizes, sizes(r.Drain()))
			assert.Equal(test.expDropped, r.Dropped())
			assert.Equal(test.expCapacity, r.Capacity())
			assert.Equal(0, r.Len())
		})
	}
}

func TestFrameRingWrapsAfterDrain(t *testing.T) {
	r := NewFrameRing(2)
	r.Push(frameOfSize(1))
	r.Drain()

	r.Push(frameOfSize(2))
	r.Push(frameOfSize(3))
	assert.Equal(t, []int{2, 3}, sizes(r.Drain()))
}

func TestOutbox(t *testing.T) {
	o := newOutbox(4)
	o.Offer(frameOfSize(1))
	o.Offer(frameOfSize(2))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	frames, err := o.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, sizes(frames))

	done := make(chan []visual.Frame)
	go func() {
		frames, _ := o.Next(ctx)
		done <- frames
	}()
	o.Offer(frameOfSize(3))
	assert.Equal(t, []int{3}, sizes(<-done))

	canceled, stop := context.WithCancel(context.Background())
	stop()
	_, err = o.Next(canceled)
	assert.ErrorIs(t, err, context.Canceled)
}
