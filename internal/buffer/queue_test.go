package buffer

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestQueue_PushPop(t *testing.T) {
	q := NewQueue()

	if q.Pop() != nil {
		t.Error("expected nil from empty queue")
	}

	q.Push(msg("a"))
	q.Push(msg("b"))
	if q.Len() != 2 {
		t.Errorf("expected length 2, got %d", q.Len())
	}

	if got := q.Pop(); got.Content != "a" {
		t.Errorf("expected 'a', got %q", got.Content)
	}
	if got := q.Pop(); got.Content != "b" {
		t.Errorf("expected 'b', got %q", got.Content)
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got length %d", q.Len())
	}
}

func TestQueue_PushFront(t *testing.T) {
	q := NewQueue()

	q.Push(msg("b"))
	q.Push(msg("c"))
	q.PushFront(msg("a"))

	want := []string{"a", "b", "c"}
	for _, w := range want {
		got := q.Pop()
		if got == nil || got.Content != w {
			t.Fatalf("expected %q, got %v", w, got)
		}
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Push(msg("a"))
	q.Push(msg("b"))

	q.Clear()
	if q.Len() != 0 {
		t.Errorf("expected length 0 after clear, got %d", q.Len())
	}
	if q.Pop() != nil {
		t.Error("expected nil after clear")
	}
}

// For any sequence of tail pushes, messages come back out in exactly the
// order they went in.
func TestQueueFIFOOrderingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("drains in insertion order", prop.ForAll(
		func(count int) bool {
			q := NewQueue()
			for i := 0; i < count; i++ {
				q.Push(msg(fmt.Sprintf("m%d", i)))
			}
			for i := 0; i < count; i++ {
				m := q.Pop()
				if m == nil || m.Content != fmt.Sprintf("m%d", i) {
					return false
				}
			}
			return q.Pop() == nil
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
