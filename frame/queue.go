package frame

import (
	"sync"

	mandel "github.com/marben/mandelview"
)

// Queue is an EventSource fed from other goroutines, for inputs that push
// events (a network connection) rather than being polled.
type Queue struct {
	mu      sync.Mutex
	pending []mandel.Event
	x, y    int
}

// NewQueue returns a queue with the pointer parked outside any frame.
func NewQueue() *Queue {
	return &Queue{x: -1, y: -1}
}

func (q *Queue) Push(ev mandel.Event) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

func (q *Queue) MovePointer(x, y int) {
	q.mu.Lock()
	q.x, q.y = x, y
	q.mu.Unlock()
}

func (q *Queue) PollEvents() []mandel.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	evs := q.pending
	q.pending = nil
	return evs
}

func (q *Queue) PointerPosition() (x, y int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.x, q.y
}
