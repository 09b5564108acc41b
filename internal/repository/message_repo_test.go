package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/void-terminal/voidterm/internal/db"
	"github.com/void-terminal/voidterm/internal/model"
)

func newTestRepo(t *testing.T) *MessageRepository {
	t.Helper()
	database, err := db.NewTestDB()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewMessageRepository(database)
}

func TestMessageRepository_CreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		msg := model.NewMessage("alice", fmt.Sprintf("m%d", i), model.MessageTypeDefault)
		msg.Timestamp = base.Add(time.Duration(i) * time.Second)
		if err := repo.Create(ctx, "term-1", msg); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	messages, err := repo.ListByTerminal(ctx, "term-1", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	// Chronological order for replay.
	for i, msg := range messages {
		if msg.Content != fmt.Sprintf("m%d", i) {
			t.Errorf("index %d: expected m%d, got %q", i, i, msg.Content)
		}
		if msg.Sender != "alice" || msg.Type != model.MessageTypeDefault {
			t.Errorf("unexpected message fields: %+v", msg)
		}
	}
}

func TestMessageRepository_ListLimitKeepsNewest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		msg := model.NewMessage("alice", fmt.Sprintf("m%d", i), model.MessageTypeDefault)
		msg.Timestamp = base.Add(time.Duration(i) * time.Second)
		if err := repo.Create(ctx, "term-1", msg); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	messages, err := repo.ListByTerminal(ctx, "term-1", 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "m3" || messages[1].Content != "m4" {
		t.Errorf("expected the two newest in order [m3 m4], got [%s %s]",
			messages[0].Content, messages[1].Content)
	}
}

func TestMessageRepository_TerminalsAreIsolated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.Create(ctx, "term-1", model.NewMessage("a", "one", model.MessageTypeDefault))
	repo.Create(ctx, "term-2", model.NewMessage("b", "two", model.MessageTypeDefault))

	count, err := repo.CountByTerminal(ctx, "term-1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 message for term-1, got %d", count)
	}

	messages, err := repo.ListByTerminal(ctx, "term-2", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "two" {
		t.Errorf("unexpected messages for term-2: %v", messages)
	}
}

func TestMessageRepository_DeleteByTerminal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.Create(ctx, "term-1", model.NewMessage("a", "one", model.MessageTypeDefault))
	repo.Create(ctx, "term-1", model.NewMessage("a", "two", model.MessageTypeDefault))

	if err := repo.DeleteByTerminal(ctx, "term-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	count, err := repo.CountByTerminal(ctx, "term-1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 messages after delete, got %d", count)
	}
}

func TestMessageRepository_AssignsMissingID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	msg := &model.Message{
		Sender:    "legacy",
		Content:   "no id",
		Type:      model.MessageTypeDefault,
		Timestamp: time.Now().UTC(),
	}
	if err := repo.Create(ctx, "term-1", msg); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	messages, err := repo.ListByTerminal(ctx, "term-1", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ID == "" {
		t.Error("expected a generated ID for the stored message")
	}
}
