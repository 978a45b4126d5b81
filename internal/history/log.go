package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is the append-only question/answer history of one client session.
// It lives in memory only and is gone when the process exits.
type Log struct {
	mu        sync.RWMutex
	sessionID string
	startedAt time.Time
	entries   []Entry
	now       func() time.Time
}

// NewLog creates an empty log with a fresh session id
func NewLog() *Log {
	return newLogWithClock(time.Now)
}

func newLogWithClock(now func() time.Time) *Log {
	return &Log{
		sessionID: uuid.New().String(),
		startedAt: now(),
		entries:   []Entry{},
		now:       now,
	}
}

// Record appends an answered question and returns the stored entry
func (l *Log) Record(question, answer string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		Question: question,
		Answer:   answer,
		AskedAt:  l.now(),
	}
	l.entries = append(l.entries, e)

	return e
}

// Entries returns a copy of all entries in the order they were recorded
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// SessionID identifies this log in exports and logs
func (l *Log) SessionID() string {
	return l.sessionID
}

// Export writes the log as indented JSON to path
func (l *Log) Export(path string) error {
	l.mu.RLock()
	export := Export{
		SessionID:  l.sessionID,
		StartedAt:  l.startedAt,
		ExportedAt: l.now(),
		Entries:    append([]Entry{}, l.entries...),
	}
	l.mu.RUnlock()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
