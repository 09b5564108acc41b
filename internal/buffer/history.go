// Package buffer provides the bounded history ring and the outbound send queue.
package buffer

import (
	"sync"

	"github.com/void-terminal/voidterm/internal/model"
)

// History is a thread-safe bounded buffer that retains the most recent
// messages up to a fixed capacity. When the buffer is full, the oldest
// entry is evicted to make room for new ones; eviction is purely by age.
//
// It backs the terminal's display/replay history on the client and the
// offline delivery buffer on the server.
type History struct {
	messages []*model.Message
	capacity int
	mu       sync.RWMutex
}

// NewHistory creates a History with the given capacity.
// A capacity of zero or less defaults to 1.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{
		messages: make([]*model.Message, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a message, evicting the oldest entry if at capacity.
func (h *History) Append(msg *model.Message) {
	if msg == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.messages) >= h.capacity {
		// Shift left instead of reslicing so the backing array cannot
		// grow without bound across many evictions.
		copy(h.messages, h.messages[1:])
		h.messages[len(h.messages)-1] = msg
		return
	}
	h.messages = append(h.messages, msg)
}

// Messages returns a copy of the retained messages in insertion order.
func (h *History) Messages() []*model.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) == 0 {
		return nil
	}
	result := make([]*model.Message, len(h.messages))
	copy(result, h.messages)
	return result
}

// Clear removes all retained messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = h.messages[:0]
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.messages)
}

// Cap returns the capacity of the buffer.
func (h *History) Cap() int {
	return h.capacity
}
