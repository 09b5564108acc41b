// Package model defines the wire message format and the shared error values.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType classifies a message for display purposes.
type MessageType string

const (
	MessageTypeSystem  MessageType = "system"
	MessageTypeError   MessageType = "error"
	MessageTypeWarning MessageType = "warning"
	MessageTypeSuccess MessageType = "success"
	MessageTypeDefault MessageType = "message"
)

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeSystem, MessageTypeError, MessageTypeWarning, MessageTypeSuccess, MessageTypeDefault:
		return true
	}
	return false
}

// Message is the unit of data exchanged over a terminal connection.
// One JSON object per frame; the timestamp travels as an RFC 3339 string.
// Sender and Content are untrusted external input and must be treated as
// opaque text by consumers.
type Message struct {
	ID        string      `json:"id,omitempty"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage creates an outbound message with a fresh ID and the current time.
func NewMessage(sender, content string, msgType MessageType) *Message {
	if msgType == "" {
		msgType = MessageTypeDefault
	}
	return &Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Content:   content,
		Type:      msgType,
		Timestamp: time.Now().UTC(),
	}
}

// ParseMessage decodes a single wire frame into a Message.
// A missing type defaults to "message"; an unknown type, or a frame that is
// not a JSON object of the expected shape, is a parse error. A missing
// timestamp defaults to the time of receipt.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if msg.Type == "" {
		msg.Type = MessageTypeDefault
	}
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", ErrParse, msg.Type)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return &msg, nil
}

// Encode serializes the message to its wire form.
func (m *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}
