package engine

import (
	"sync"

	"github.com/grovetools/forksync/pkg/models"
)

// Queue carries ProgressEvents from any number of workers to one consumer.
// Send never blocks; the consumer polls with Drain or waits on Notify.
type Queue struct {
	mu     sync.Mutex
	events []models.ProgressEvent
	notify chan struct{}
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Send appends ev and wakes a waiting consumer.
func (q *Queue) Send(ev models.ProgressEvent) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns all pending events in send order.
func (q *Queue) Drain() []models.ProgressEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Notify signals, coalesced, that events may be pending.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}
