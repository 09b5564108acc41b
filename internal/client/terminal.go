// Package client implements the resilient terminal streaming client: a
// stateful WebSocket connection with automatic reconnection, offline send
// buffering and bounded message history.
package client

import (
	"errors"
	"log"
	"sync"

	"github.com/void-terminal/voidterm/internal/buffer"
	"github.com/void-terminal/voidterm/internal/event"
	"github.com/void-terminal/voidterm/internal/model"
)

// Terminal binds one connection Manager, one outbound Queue, one History
// buffer and one event Hub to one logical endpoint identity. Construct one
// Terminal per panel/endpoint pair; nothing is shared across instances.
type Terminal struct {
	cfg     Config
	manager *Manager
	queue   *buffer.Queue
	history *buffer.History
	events  *event.Hub

	mu        sync.Mutex
	destroyed bool

	// sendMu serializes queue drains so transmission order always matches
	// queue order.
	sendMu sync.Mutex
}

// New creates a Terminal that dials the configured endpoint over WebSocket.
func New(cfg Config) (*Terminal, error) {
	return NewWithDialer(cfg, DialWebSocket)
}

// NewWithDialer creates a Terminal with a custom transport dialer. Useful
// for tests and alternative transports.
func NewWithDialer(cfg Config, dial Dialer) (*Terminal, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Terminal{
		cfg:     cfg,
		manager: NewManager(cfg, dial),
		queue:   buffer.NewQueue(),
		history: buffer.NewHistory(cfg.MaxHistory),
		events:  event.NewHub(),
	}

	t.manager.SetOnConnected(t.handleConnected)
	t.manager.SetOnDisconnected(t.handleDisconnected)
	t.manager.SetOnMessage(t.handleInbound)
	t.manager.SetOnError(t.handleError)

	return t, nil
}

// Events returns the hub on which lifecycle and data events are published.
func (t *Terminal) Events() *event.Hub {
	return t.events
}

// State returns the current connection state.
func (t *Terminal) State() State {
	return t.manager.State()
}

// TerminalID returns the logical panel identity this terminal is bound to.
func (t *Terminal) TerminalID() string {
	return t.cfg.TerminalID
}

// Connect starts a connection attempt. No-op while one is already in flight.
func (t *Terminal) Connect() {
	if t.isDestroyed() {
		return
	}
	t.manager.Connect()
}

// Reconnect resets the retry counter and forces a fresh attempt. This is the
// user-facing way out of the failed state.
func (t *Terminal) Reconnect() {
	if t.isDestroyed() {
		return
	}
	t.manager.Reconnect()
}

// Send transmits content to the remote endpoint. Every message passes
// through the outbound queue so a send issued mid-drain cannot overtake
// what was queued before it; while connected the queue is drained
// immediately. A transmission failure re-inserts the message at the head of
// the queue and is reported as an error event, never to the caller. While
// not connected the message waits for the next connection and, when
// auto-reconnect is enabled, a connection attempt is triggered without
// blocking the caller.
func (t *Terminal) Send(content string) error {
	if t.isDestroyed() {
		return model.ErrTerminalDestroyed
	}

	t.queue.Push(model.NewMessage(t.cfg.Sender, content, model.MessageTypeDefault))

	if t.manager.State() == StateConnected {
		t.flushQueue()
		return nil
	}
	if t.cfg.autoReconnect() {
		go t.manager.Connect()
	}
	return nil
}

// Queued returns the number of messages waiting for a connection.
func (t *Terminal) Queued() int {
	return t.queue.Len()
}

// History returns a copy of the retained messages in insertion order.
func (t *Terminal) History() []*model.Message {
	return t.history.Messages()
}

// ClearHistory empties the history buffer. Connection state and the outbound
// queue are unaffected.
func (t *Terminal) ClearHistory() {
	t.history.Clear()
}

// SetVisible reports UI visibility to the connection manager.
func (t *Terminal) SetVisible(visible bool) {
	if t.isDestroyed() {
		return
	}
	t.manager.SetVisible(visible)
}

// SetOnline reports network reachability to the connection manager.
func (t *Terminal) SetOnline(online bool) {
	if t.isDestroyed() {
		return
	}
	t.manager.SetOnline(online)
}

// Destroy closes the connection, cancels all pending timers, clears the
// queue and history and deregisters every listener. No event fires after it
// returns. It is irreversible and safe to call multiple times.
func (t *Terminal) Destroy() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	t.mu.Unlock()

	t.manager.Close()
	t.events.Close()
	t.queue.Clear()
	t.history.Clear()
}

func (t *Terminal) isDestroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

// handleConnected announces the connection and drains anything queued while
// offline.
func (t *Terminal) handleConnected() {
	t.events.EmitConnected()
	t.flushQueue()
}

// flushQueue drains the outbound queue strictly head-to-tail. Pop and
// transmit happen under sendMu so concurrent drains cannot interleave on
// the wire; the drain stops at the first transmission failure, re-prepending
// the failed message for the next attempt.
func (t *Terminal) flushQueue() {
	for {
		t.sendMu.Lock()
		msg := t.queue.Pop()
		if msg == nil {
			t.sendMu.Unlock()
			return
		}
		if err := t.manager.Send(msg); err != nil {
			t.queue.PushFront(msg)
			t.sendMu.Unlock()
			if !errors.Is(err, model.ErrNotConnected) {
				t.events.EmitError(err)
			}
			return
		}
		t.history.Append(msg)
		t.sendMu.Unlock()
		t.events.EmitMessageSent(msg)
	}
}

// handleInbound parses a raw frame and publishes it. Malformed payloads are
// dropped with an error event; they never affect the connection or history.
func (t *Terminal) handleInbound(data []byte) {
	msg, err := model.ParseMessage(data)
	if err != nil {
		log.Printf("terminal %s: dropping malformed frame: %v", t.cfg.TerminalID, err)
		t.events.EmitError(err)
		return
	}
	t.history.Append(msg)
	t.events.EmitMessage(msg)
}

func (t *Terminal) handleDisconnected(detail string) {
	t.events.EmitDisconnected(detail)
}

func (t *Terminal) handleError(err error) {
	t.events.EmitError(err)
}
