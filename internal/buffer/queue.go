package buffer

import (
	"sync"

	"github.com/void-terminal/voidterm/internal/model"
)

// Queue is a thread-safe FIFO holding area for messages generated while no
// live connection exists. Insertion order is the only ordering guarantee,
// except that a message re-inserted at the head (after a failed transmission)
// is drained before anything queued after it.
type Queue struct {
	messages []*model.Message
	mu       sync.Mutex
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a message at the tail.
func (q *Queue) Push(msg *model.Message) {
	if msg == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
}

// PushFront re-inserts a message at the head. Used to give a message whose
// transmission just failed priority over everything queued after it.
func (q *Queue) PushFront(msg *model.Message) {
	if msg == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append([]*model.Message{msg}, q.messages...)
}

// Pop removes and returns the head of the queue, or nil if empty.
func (q *Queue) Pop() *model.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.messages) == 0 {
		return nil
	}
	msg := q.messages[0]
	q.messages[0] = nil
	q.messages = q.messages[1:]
	return msg
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// Clear drops all queued messages.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = nil
}
