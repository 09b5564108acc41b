package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/void-terminal/voidterm/internal/model"
)

// State is the connection lifecycle state. Exactly one Terminal owns exactly
// one State value at a time.
type State int

const (
	// StateDisconnected means no connection exists and none is being attempted.
	StateDisconnected State = iota

	// StateConnecting means a connection attempt is in flight.
	StateConnecting

	// StateConnected means the transport is open and usable.
	StateConnected

	// StateReconnecting means an attempt failed and the retry timer is armed.
	StateReconnecting

	// StateFailed means the retry budget is exhausted; only an explicit
	// Reconnect (or an external visibility/network trigger) leaves this state.
	StateFailed
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Manager owns the transport lifecycle state machine, the fixed-interval
// reconnection policy and the per-attempt timeout. It never panics across
// its public boundary; failures surface through the error callback plus a
// state transition.
//
// All transitions run under one mutex, so no two interleave mid-step. Each
// attempt carries a generation number; transport callbacks from a superseded
// attempt are discarded, which is what makes Close a global cancellation.
type Manager struct {
	url  string
	dial Dialer
	cfg  Config

	// writeMu serializes transport writes; the underlying websocket
	// connection does not support concurrent writers.
	writeMu sync.Mutex

	mu             sync.Mutex
	state          State
	retries        int
	attempt        uint64
	transport      Transport
	reconnectTimer *time.Timer
	cancelDial     context.CancelFunc
	closed         bool

	onConnected    func()
	onDisconnected func(detail string)
	onMessage      func(data []byte)
	onError        func(err error)
}

// NewManager creates a Manager for the given endpoint. The config must
// already be normalized and validated by the owning Terminal.
func NewManager(cfg Config, dial Dialer) *Manager {
	return &Manager{
		url:   cfg.endpointURL(),
		dial:  dial,
		cfg:   cfg,
		state: StateDisconnected,
	}
}

// SetOnConnected sets the callback for successful connections.
func (m *Manager) SetOnConnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = fn
}

// SetOnDisconnected sets the callback for lost connections.
func (m *Manager) SetOnDisconnected(fn func(detail string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = fn
}

// SetOnMessage sets the callback for raw inbound frames.
func (m *Manager) SetOnMessage(fn func(data []byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMessage = fn
}

// SetOnError sets the callback for connection and timeout errors.
func (m *Manager) SetOnError(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Retries returns the current consecutive-retry count.
func (m *Manager) Retries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retries
}

// Connect starts a connection attempt. It is a no-op while an attempt is
// already in flight or the connection is up. Calling it from Failed (an
// external re-arm trigger) starts a fresh retry cycle.
func (m *Manager) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.state == StateConnecting || m.state == StateConnected {
		return
	}
	m.stopReconnectTimerLocked()
	if m.state == StateFailed {
		m.retries = 0
	}
	m.startAttemptLocked()
}

// Reconnect resets the retry counter and forces a new connection attempt,
// tearing down any live transport first. This is the only way out of Failed
// that consumes a user action.
func (m *Manager) Reconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.retries = 0
	if m.state == StateConnecting {
		// An attempt is already in flight; it now runs with a clean counter.
		return
	}
	m.stopReconnectTimerLocked()
	if m.transport != nil {
		t := m.transport
		m.transport = nil
		go t.Close()
	}
	m.startAttemptLocked()
}

// Close gracefully tears the connection down and suppresses reconnection.
// No callback fires after Close returns. It is safe to call multiple times.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.attempt++ // invalidate any in-flight dial or read loop
	m.stopReconnectTimerLocked()
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	t := m.transport
	m.transport = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if t != nil {
		t.Close()
	}
}

// Send transmits an encoded message over the live transport. Writes are
// serialized, so Send may be called from multiple goroutines. It returns
// ErrNotConnected when no connection is up and ErrSend when transmission
// fails; it never closes the connection itself.
func (m *Manager) Send(msg *model.Message) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	t := m.transport
	connected := !m.closed && m.state == StateConnected
	m.mu.Unlock()

	if !connected || t == nil {
		return model.ErrNotConnected
	}
	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSend, err)
	}
	if err := t.WriteMessage(data); err != nil {
		return fmt.Errorf("%w: %v", model.ErrSend, err)
	}
	return nil
}

// SetVisible reports UI visibility. Becoming visible while Disconnected or
// Failed re-arms a connection attempt without consuming a manual Reconnect.
func (m *Manager) SetVisible(visible bool) {
	if !visible {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || (m.state != StateDisconnected && m.state != StateFailed) {
		return
	}
	m.retries = 0
	m.startAttemptLocked()
}

// SetOnline reports network reachability. Regaining it while not connected
// re-arms an attempt; losing it while connected only produces an
// informational error event, since the transport's own close signal is
// authoritative.
func (m *Manager) SetOnline(online bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if online {
		if m.state == StateConnected || m.state == StateConnecting {
			m.mu.Unlock()
			return
		}
		m.stopReconnectTimerLocked()
		m.retries = 0
		m.startAttemptLocked()
		m.mu.Unlock()
		return
	}
	onError := m.onError
	wasConnected := m.state == StateConnected
	m.mu.Unlock()

	if wasConnected && onError != nil {
		onError(fmt.Errorf("network unreachable; awaiting transport signal"))
	}
}

// startAttemptLocked transitions to Connecting and launches the dial.
// Caller must hold m.mu. The attempt timeout is carried by the dial context
// and is cancelled the instant the dial resolves, so it can never fire across
// a state transition.
func (m *Manager) startAttemptLocked() {
	m.state = StateConnecting
	m.attempt++
	attempt := m.attempt

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ConnectTimeout)
	m.cancelDial = cancel

	go m.runDial(ctx, cancel, attempt)
}

// runDial performs one connection attempt and feeds the outcome back into
// the state machine, discarding it if the attempt was superseded.
func (m *Manager) runDial(ctx context.Context, cancel context.CancelFunc, attempt uint64) {
	t, err := m.dial(ctx, m.url)
	timedOut := ctx.Err() == context.DeadlineExceeded
	cancel()

	m.mu.Lock()
	if m.closed || attempt != m.attempt || m.state != StateConnecting {
		m.mu.Unlock()
		if t != nil {
			t.Close()
		}
		return
	}
	m.cancelDial = nil

	if err != nil {
		if timedOut {
			err = fmt.Errorf("%w after %s", model.ErrConnectionTimeout, m.cfg.ConnectTimeout)
		} else {
			err = fmt.Errorf("%w: %v", model.ErrConnectionClosed, err)
		}
		m.failLocked(err, "", false)
		return
	}

	m.transport = t
	m.state = StateConnected
	m.retries = 0
	onConnected := m.onConnected
	go m.readLoop(t, attempt)
	m.mu.Unlock()

	if onConnected != nil {
		onConnected()
	}
}

// readLoop pumps frames from the transport until it fails or is superseded.
func (m *Manager) readLoop(t Transport, attempt uint64) {
	for {
		data, err := t.ReadMessage()
		if err != nil {
			m.handleTransportError(t, attempt, err)
			return
		}

		m.mu.Lock()
		stale := m.closed || attempt != m.attempt
		onMessage := m.onMessage
		m.mu.Unlock()
		if stale {
			return
		}
		if onMessage != nil {
			onMessage(data)
		}
	}
}

// handleTransportError processes a read failure on a live connection.
func (m *Manager) handleTransportError(t Transport, attempt uint64, err error) {
	t.Close()

	m.mu.Lock()
	if m.closed || attempt != m.attempt || m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	m.transport = nil
	m.failLocked(fmt.Errorf("%w: %v", model.ErrConnectionClosed, err), err.Error(), true)
}

// failLocked applies the reconnection policy after a failed attempt or a
// dropped connection. Caller must hold m.mu; it is released before listeners
// run so callbacks may re-enter the manager.
func (m *Manager) failLocked(err error, detail string, wasConnected bool) {
	onError := m.onError
	onDisconnected := m.onDisconnected

	if m.cfg.autoReconnect() && m.retries < m.cfg.MaxRetries {
		m.state = StateReconnecting
		m.armReconnectTimerLocked()
	} else {
		m.state = StateFailed
	}
	m.mu.Unlock()

	if wasConnected && onDisconnected != nil {
		onDisconnected(detail)
	}
	if onError != nil {
		onError(err)
	}
}

// armReconnectTimerLocked schedules the next attempt. The handle is retained
// so Close and explicit triggers can cancel it; the callback re-checks state
// so a raced cancellation cannot double-fire an attempt.
func (m *Manager) armReconnectTimerLocked() {
	m.reconnectTimer = time.AfterFunc(m.cfg.ReconnectInterval, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.state != StateReconnecting {
			return
		}
		m.retries++
		m.startAttemptLocked()
	})
}

func (m *Manager) stopReconnectTimerLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}
