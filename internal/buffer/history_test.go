package buffer

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/void-terminal/voidterm/internal/model"
)

func msg(content string) *model.Message {
	return model.NewMessage("test", content, model.MessageTypeDefault)
}

func TestNewHistory(t *testing.T) {
	// Test with valid capacity
	h := NewHistory(100)
	if h.Cap() != 100 {
		t.Errorf("expected capacity 100, got %d", h.Cap())
	}
	if h.Len() != 0 {
		t.Errorf("expected length 0, got %d", h.Len())
	}

	// Test with zero capacity (should default to 1)
	h = NewHistory(0)
	if h.Cap() != 1 {
		t.Errorf("expected capacity 1 for zero input, got %d", h.Cap())
	}

	// Test with negative capacity (should default to 1)
	h = NewHistory(-5)
	if h.Cap() != 1 {
		t.Errorf("expected capacity 1 for negative input, got %d", h.Cap())
	}
}

func TestHistory_Append(t *testing.T) {
	h := NewHistory(3)

	h.Append(msg("a"))
	h.Append(msg("b"))
	if h.Len() != 2 {
		t.Errorf("expected length 2, got %d", h.Len())
	}

	got := h.Messages()
	if got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("expected [a b], got [%s %s]", got[0].Content, got[1].Content)
	}

	// Appending nil is a no-op
	h.Append(nil)
	if h.Len() != 2 {
		t.Errorf("expected nil append to be ignored, got length %d", h.Len())
	}
}

func TestHistory_Eviction(t *testing.T) {
	h := NewHistory(3)

	for _, c := range []string{"a", "b", "c", "d", "e"} {
		h.Append(msg(c))
	}

	if h.Len() != 3 {
		t.Errorf("expected length 3, got %d", h.Len())
	}

	got := h.Messages()
	want := []string{"c", "d", "e"}
	for i, w := range want {
		if got[i].Content != w {
			t.Errorf("index %d: expected %q, got %q", i, w, got[i].Content)
		}
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(5)
	h.Append(msg("a"))
	h.Append(msg("b"))

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("expected length 0 after clear, got %d", h.Len())
	}
	if h.Messages() != nil {
		t.Error("expected nil messages after clear")
	}

	// Buffer is reusable after clear
	h.Append(msg("c"))
	if h.Len() != 1 {
		t.Errorf("expected length 1, got %d", h.Len())
	}
}

func TestHistory_MessagesReturnsCopy(t *testing.T) {
	h := NewHistory(5)
	h.Append(msg("a"))

	got := h.Messages()
	got[0] = msg("mutated")

	if h.Messages()[0].Content != "a" {
		t.Error("mutating the returned slice must not affect the buffer")
	}
}

// For any sequence of appends, the buffer never exceeds capacity and retains
// exactly the most recent entries in their original order.
func TestHistoryBoundedRetentionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("retains the newest entries in order", prop.ForAll(
		func(capacity int, count int) bool {
			h := NewHistory(capacity)
			for i := 0; i < count; i++ {
				h.Append(msg(fmt.Sprintf("m%d", i)))
			}

			if h.Len() > h.Cap() {
				return false
			}

			expected := count
			if expected > h.Cap() {
				expected = h.Cap()
			}

			got := h.Messages()
			if len(got) != expected {
				return false
			}
			for i, m := range got {
				if m.Content != fmt.Sprintf("m%d", count-expected+i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}
