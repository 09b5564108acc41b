// Package repository provides data access for persisted terminal messages.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/void-terminal/voidterm/internal/model"
)

// MessageRepository provides data access for messages.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message for the given terminal. A missing message ID is
// assigned here so replayed frames from older clients remain storable.
func (r *MessageRepository) Create(ctx context.Context, terminalID string, msg *model.Message) error {
	id := msg.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO messages (id, terminal_id, sender, content, type, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		terminalID,
		msg.Sender,
		msg.Content,
		string(msg.Type),
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to persist message: %w", err)
	}

	return nil
}

// ListByTerminal returns the most recent messages for a terminal in
// chronological order. A limit of zero or less returns everything.
func (r *MessageRepository) ListByTerminal(ctx context.Context, terminalID string, limit int) ([]*model.Message, error) {
	query := `
		SELECT id, sender, content, type, timestamp
		FROM messages
		WHERE terminal_id = ?
		ORDER BY timestamp DESC, created_at DESC
	`
	args := []any{terminalID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		msg := &model.Message{}
		var msgType string
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Content, &msgType, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Type = model.MessageType(msgType)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	// Newest-first from the query; flip to chronological order for replay.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CountByTerminal returns the number of persisted messages for a terminal.
func (r *MessageRepository) CountByTerminal(ctx context.Context, terminalID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE terminal_id = ?", terminalID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// DeleteByTerminal removes all persisted messages for a terminal.
func (r *MessageRepository) DeleteByTerminal(ctx context.Context, terminalID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM messages WHERE terminal_id = ?", terminalID)
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
