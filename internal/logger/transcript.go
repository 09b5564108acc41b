// Package logger records terminal message traffic as replayable transcripts.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TranscriptHeader is the first line of a transcript file.
type TranscriptHeader struct {
	Version    int    `json:"version"`
	TerminalID string `json:"terminal_id"`
	Timestamp  int64  `json:"timestamp"`
}

// TranscriptEvent is a single transcript line.
// Format: [time_offset, direction, payload]
type TranscriptEvent struct {
	TimeOffset float64
	Direction  string // "recv" for client traffic, "inject" for API-injected messages
	Payload    string
}

// MarshalJSON implements custom JSON marshaling for TranscriptEvent.
func (e TranscriptEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.TimeOffset, e.Direction, e.Payload})
}

// UnmarshalJSON implements custom JSON unmarshaling for TranscriptEvent.
func (e *TranscriptEvent) UnmarshalJSON(data []byte) error {
	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 3 {
		return fmt.Errorf("invalid event format: expected 3 elements, got %d", len(arr))
	}

	timeOffset, ok := arr[0].(float64)
	if !ok {
		return fmt.Errorf("invalid time offset type")
	}
	e.TimeOffset = timeOffset

	direction, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid direction type")
	}
	e.Direction = direction

	payload, ok := arr[2].(string)
	if !ok {
		return fmt.Errorf("invalid payload type")
	}
	e.Payload = payload

	return nil
}

// Transcript records the message traffic of one terminal in JSON-Lines format.
type Transcript struct {
	writer    io.Writer
	file      *os.File // only set if we own the file
	startTime time.Time
	mu        sync.Mutex
}

// NewTranscript creates a Transcript that writes to the given file path and
// writes the header line.
func NewTranscript(filePath, terminalID string) (*Transcript, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	t := &Transcript{
		writer:    file,
		file:      file,
		startTime: time.Now(),
	}
	if err := t.writeHeader(terminalID); err != nil {
		file.Close()
		return nil, err
	}
	return t, nil
}

// NewTranscriptWithWriter creates a Transcript that writes to the given
// writer. This is useful for testing.
func NewTranscriptWithWriter(w io.Writer, terminalID string) (*Transcript, error) {
	t := &Transcript{
		writer:    w,
		startTime: time.Now(),
	}
	if err := t.writeHeader(terminalID); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transcript) writeHeader(terminalID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	header := TranscriptHeader{
		Version:    1,
		TerminalID: terminalID,
		Timestamp:  t.startTime.Unix(),
	}

	data, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// Record appends one event line for the given traffic direction.
func (t *Transcript) Record(direction string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	event := TranscriptEvent{
		TimeOffset: time.Since(t.startTime).Seconds(),
		Direction:  direction,
		Payload:    string(payload),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Close closes the transcript file.
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		return t.file.Close()
	}
	return nil
}

// StartTime returns the start time of the transcript.
func (t *Transcript) StartTime() time.Time {
	return t.startTime
}

// Store lazily opens and caches one Transcript per terminal under a
// directory.
type Store struct {
	dir  string
	mu   sync.Mutex
	open map[string]*Transcript
}

// NewStore creates a transcript Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:  dir,
		open: make(map[string]*Transcript),
	}
}

// Get returns the transcript for the terminal, opening it on first use.
func (s *Store) Get(terminalID string) (*Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.open[terminalID]; ok {
		return t, nil
	}
	t, err := NewTranscript(fmt.Sprintf("%s/%s.jsonl", s.dir, terminalID), terminalID)
	if err != nil {
		return nil, err
	}
	s.open[terminalID] = t
	return t, nil
}

// Close closes all open transcripts.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.open {
		t.Close()
	}
	s.open = make(map[string]*Transcript)
}
