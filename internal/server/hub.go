// Package server provides the WebSocket relay endpoint terminals connect to.
package server

import (
	"sync"

	"github.com/void-terminal/voidterm/internal/buffer"
	"github.com/void-terminal/voidterm/internal/model"
)

// pendingCapacity bounds the offline delivery buffer per terminal; the
// oldest entry is evicted once it is exceeded.
const pendingCapacity = 1000

// Client represents one WebSocket connection attached to a terminal.
type Client struct {
	hub    *Hub
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewClient creates a client with a bounded send queue.
func NewClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
}

// Send queues a frame for delivery to this client. A client whose send
// buffer is full is considered stuck and is closed.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.closeLocked()
	}
}

// SendMessage encodes and queues a message for this client.
func (c *Client) SendMessage(msg *model.Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	c.Send(data)
	return nil
}

// Close closes the client's send channel. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// SendChan returns the outbound frame channel for the write pump.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// Hub manages the WebSocket clients attached to one terminal and the
// delivery buffer for messages that arrive while nobody is attached.
type Hub struct {
	terminalID string
	clients    map[*Client]bool
	pending    *buffer.History
	mu         sync.RWMutex

	onClose func()
}

// NewHub creates a Hub for the given terminal.
func NewHub(terminalID string) *Hub {
	return &Hub{
		terminalID: terminalID,
		clients:    make(map[*Client]bool),
		pending:    buffer.NewHistory(pendingCapacity),
	}
}

// TerminalID returns the terminal this hub serves.
func (h *Hub) TerminalID() string {
	return h.terminalID
}

// SetOnClose sets the callback invoked when the last client detaches.
func (h *Hub) SetOnClose(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClose = fn
}

// Register attaches a client and drains any buffered messages to it, so a
// reconnecting terminal receives what it missed while offline.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	missed := h.pending.Messages()
	h.pending.Clear()
	h.mu.Unlock()

	for _, msg := range missed {
		client.SendMessage(msg)
	}
}

// Unregister detaches a client, closing it and firing the onClose callback
// when no clients remain.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	remaining := len(h.clients)
	onClose := h.onClose
	h.mu.Unlock()

	client.Close()

	if remaining == 0 && onClose != nil {
		onClose()
	}
}

// Deliver relays a message to every attached client except the originator.
// With nobody to deliver to, the message is buffered for the next attach.
func (h *Hub) Deliver(msg *model.Message, exclude *Client) {
	data, err := msg.Encode()
	if err != nil {
		return
	}

	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client != exclude {
			recipients = append(recipients, client)
		}
	}
	h.mu.RUnlock()

	if len(recipients) == 0 {
		// A client registering concurrently has already drained pending, so
		// re-check membership under the write lock before buffering; Register
		// drains under the same lock.
		h.mu.Lock()
		for client := range h.clients {
			if client != exclude {
				recipients = append(recipients, client)
			}
		}
		if len(recipients) == 0 {
			h.pending.Append(msg)
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
	for _, client := range recipients {
		client.Send(data)
	}
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PendingCount returns the number of buffered undelivered messages.
func (h *Hub) PendingCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pending.Len()
}

// Close detaches and closes every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}

// HubManager tracks the hubs of all known terminals.
type HubManager struct {
	hubs map[string]*Hub
	mu   sync.RWMutex
}

// NewHubManager creates an empty HubManager.
func NewHubManager() *HubManager {
	return &HubManager{
		hubs: make(map[string]*Hub),
	}
}

// GetOrCreate returns the hub for the terminal, creating it if needed.
func (m *HubManager) GetOrCreate(terminalID string) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[terminalID]; ok {
		return hub
	}
	hub := NewHub(terminalID)
	m.hubs[terminalID] = hub
	return hub
}

// Get returns the hub for the terminal, or nil if none exists.
func (m *HubManager) Get(terminalID string) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[terminalID]
}

// TerminalIDs returns the IDs of all known terminals.
func (m *HubManager) TerminalIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.hubs))
	for id := range m.hubs {
		ids = append(ids, id)
	}
	return ids
}

// Remove closes and forgets the hub for the terminal.
func (m *HubManager) Remove(terminalID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[terminalID]; ok {
		hub.Close()
		delete(m.hubs, terminalID)
	}
}

// Close closes all hubs.
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, hub := range m.hubs {
		hub.Close()
	}
	m.hubs = make(map[string]*Hub)
}
