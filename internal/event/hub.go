// Package event provides the typed publish/subscribe hub that decouples the
// connection layer from presentation code.
package event

import (
	"sync"

	"github.com/void-terminal/voidterm/internal/model"
)

// Hub dispatches terminal lifecycle and data events to registered listeners.
// Each event kind has its own typed subscription method returning an
// unsubscribe func. After Close, registration and emission are no-ops, so no
// listener can fire once the owning terminal is destroyed.
type Hub struct {
	mu     sync.Mutex
	nextID int
	closed bool

	connected    map[int]func()
	disconnected map[int]func(detail string)
	message      map[int]func(msg *model.Message)
	messageSent  map[int]func(msg *model.Message)
	errs         map[int]func(err error)
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		connected:    make(map[int]func()),
		disconnected: make(map[int]func(detail string)),
		message:      make(map[int]func(msg *model.Message)),
		messageSent:  make(map[int]func(msg *model.Message)),
		errs:         make(map[int]func(err error)),
	}
}

func (h *Hub) subscribe(register func(id int)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return func() {}
	}
	id := h.nextID
	h.nextID++
	register(id)
	return h.unsubscriber(id)
}

func (h *Hub) unsubscriber(id int) func() {
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.connected, id)
		delete(h.disconnected, id)
		delete(h.message, id)
		delete(h.messageSent, id)
		delete(h.errs, id)
	}
}

// OnConnected registers a listener for successful connections.
func (h *Hub) OnConnected(fn func()) func() {
	return h.subscribe(func(id int) { h.connected[id] = fn })
}

// OnDisconnected registers a listener for disconnects; detail carries the
// close reason when known.
func (h *Hub) OnDisconnected(fn func(detail string)) func() {
	return h.subscribe(func(id int) { h.disconnected[id] = fn })
}

// OnMessage registers a listener for inbound messages.
func (h *Hub) OnMessage(fn func(msg *model.Message)) func() {
	return h.subscribe(func(id int) { h.message[id] = fn })
}

// OnMessageSent registers a listener for successfully transmitted messages.
func (h *Hub) OnMessageSent(fn func(msg *model.Message)) func() {
	return h.subscribe(func(id int) { h.messageSent[id] = fn })
}

// OnError registers a listener for connection, parse and send errors.
func (h *Hub) OnError(fn func(err error)) func() {
	return h.subscribe(func(id int) { h.errs[id] = fn })
}

// EmitConnected notifies connected listeners.
func (h *Hub) EmitConnected() {
	for _, fn := range snapshot(h, h.connected) {
		fn()
	}
}

// EmitDisconnected notifies disconnected listeners.
func (h *Hub) EmitDisconnected(detail string) {
	for _, fn := range snapshot(h, h.disconnected) {
		fn(detail)
	}
}

// EmitMessage notifies message listeners.
func (h *Hub) EmitMessage(msg *model.Message) {
	for _, fn := range snapshot(h, h.message) {
		fn(msg)
	}
}

// EmitMessageSent notifies messageSent listeners.
func (h *Hub) EmitMessageSent(msg *model.Message) {
	for _, fn := range snapshot(h, h.messageSent) {
		fn(msg)
	}
}

// EmitError notifies error listeners.
func (h *Hub) EmitError(err error) {
	for _, fn := range snapshot(h, h.errs) {
		fn(err)
	}
}

// snapshot copies the listener set under the lock so listeners run without
// holding it and may unsubscribe from within their own callback.
func snapshot[T any](h *Hub, m map[int]T) []T {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || len(m) == 0 {
		return nil
	}
	fns := make([]T, 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return fns
}

// Close deregisters all listeners and suppresses any further emission.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.connected = make(map[int]func())
	h.disconnected = make(map[int]func(detail string))
	h.message = make(map[int]func(msg *model.Message))
	h.messageSent = make(map[int]func(msg *model.Message))
	h.errs = make(map[int]func(err error))
}
