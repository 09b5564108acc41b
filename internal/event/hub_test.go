package event

import (
	"errors"
	"testing"

	"github.com/void-terminal/voidterm/internal/model"
)

func TestHub_TypedDispatch(t *testing.T) {
	h := NewHub()

	var connected int
	var gotDetail string
	var gotMsg *model.Message
	var gotErr error

	h.OnConnected(func() { connected++ })
	h.OnDisconnected(func(detail string) { gotDetail = detail })
	h.OnMessage(func(msg *model.Message) { gotMsg = msg })
	h.OnError(func(err error) { gotErr = err })

	h.EmitConnected()
	h.EmitDisconnected("going away")
	m := model.NewMessage("peer", "hello", model.MessageTypeDefault)
	h.EmitMessage(m)
	wantErr := errors.New("boom")
	h.EmitError(wantErr)

	if connected != 1 {
		t.Errorf("expected 1 connected event, got %d", connected)
	}
	if gotDetail != "going away" {
		t.Errorf("expected detail 'going away', got %q", gotDetail)
	}
	if gotMsg != m {
		t.Error("expected the emitted message to reach the listener")
	}
	if gotErr != wantErr {
		t.Errorf("expected %v, got %v", wantErr, gotErr)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := NewHub()

	var calls int
	unsub := h.OnConnected(func() { calls++ })

	h.EmitConnected()
	unsub()
	h.EmitConnected()

	if calls != 1 {
		t.Errorf("expected 1 call after unsubscribe, got %d", calls)
	}

	// Unsubscribing twice is harmless
	unsub()
}

func TestHub_MultipleListeners(t *testing.T) {
	h := NewHub()

	var a, b int
	h.OnMessageSent(func(*model.Message) { a++ })
	h.OnMessageSent(func(*model.Message) { b++ })

	h.EmitMessageSent(model.NewMessage("me", "x", model.MessageTypeDefault))

	if a != 1 || b != 1 {
		t.Errorf("expected both listeners called once, got a=%d b=%d", a, b)
	}
}

func TestHub_CloseSuppressesEmission(t *testing.T) {
	h := NewHub()

	var calls int
	h.OnConnected(func() { calls++ })
	h.OnError(func(error) { calls++ })

	h.Close()

	h.EmitConnected()
	h.EmitError(errors.New("late"))
	h.EmitMessage(model.NewMessage("peer", "late", model.MessageTypeDefault))

	if calls != 0 {
		t.Errorf("expected no events after close, got %d", calls)
	}

	// Registration after close is a no-op too
	h.OnConnected(func() { calls++ })
	h.EmitConnected()
	if calls != 0 {
		t.Errorf("expected no events for listeners registered after close, got %d", calls)
	}
}

func TestHub_UnsubscribeFromWithinCallback(t *testing.T) {
	h := NewHub()

	var calls int
	var unsub func()
	unsub = h.OnConnected(func() {
		calls++
		unsub()
	})

	h.EmitConnected()
	h.EmitConnected()

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
