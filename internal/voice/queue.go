package voice

import (
	"context"
	"sync"
)

// FrameQueue is a bounded FIFO of encoded microphone frames. When full, the
// oldest frame is dropped so capture never blocks on a slow remote.
type FrameQueue struct {
	mu      sync.Mutex
	items   []string
	size    int
	dropped uint64
	ready   chan struct{}
}

func NewFrameQueue(size int) *FrameQueue {
	if size < 1 {
		size = 1
	}
	return &FrameQueue{
		items: make([]string, 0, size),
		size:  size,
		ready: make(chan struct{}, 1),
	}
}

// Push enqueues frame and reports whether an older frame was dropped for it.
func (q *FrameQueue) Push(frame string) bool {
	q.mu.Lock()
	dropped := false
	if len(q.items) == q.size {
		q.items = q.items[1:]
		q.dropped++
		dropped = true
	}
	q.items = append(q.items, frame)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return dropped
}

// Pop blocks until a frame is available or ctx is done.
func (q *FrameQueue) Pop(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			frame := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return frame, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.ready:
		}
	}
}

func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *FrameQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
