package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"eda-client/internal/backend"
	"eda-client/internal/history"
	"eda-client/internal/interpreter"
)

var (
	// ErrEmptyQuestion is returned by Ask for blank questions; nothing is sent
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrNoFile is returned by Upload when no path is given
	ErrNoFile = errors.New("no file selected")
)

// Backend is the transport the session talks to
type Backend interface {
	Upload(ctx context.Context, path string) (*backend.UploadResponse, error)
	Ask(ctx context.Context, question string) (*backend.AskResponse, error)
	Current(ctx context.Context) (*backend.CurrentResponse, error)
}

// Session is the client's view-model: the uploaded file, the latest answer
// and the question history
type Session struct {
	backend Backend
	history *history.Log
	logger  *zap.SugaredLogger

	mu       sync.Mutex
	filename string
	last     *interpreter.Outcome
}

// New creates a session backed by b
func New(b Backend, logger *zap.SugaredLogger) *Session {
	return &Session{
		backend: b,
		history: history.NewLog(),
		logger:  logger,
	}
}

// Upload sends a CSV file and remembers the name the backend stored it under
func (s *Session) Upload(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrNoFile
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("unable to read %s: %w", path, err)
	}

	res, err := s.backend.Upload(ctx, path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.filename = res.Filename
	s.mu.Unlock()

	s.logger.Infow("file uploaded", "filename", res.Filename, "session", s.history.SessionID())
	return res.Filename, nil
}

// Ask sends a question and interprets the answer. Text answers are
// recorded in the history; image downloads are not.
func (s *Session) Ask(ctx context.Context, question string) (interpreter.Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return interpreter.Outcome{}, ErrEmptyQuestion
	}

	res, err := s.backend.Ask(ctx, question)
	if err != nil {
		return interpreter.Outcome{}, err
	}

	outcome := interpreter.Interpret(res)
	if outcome.Kind == interpreter.TextOutcome {
		s.recordAnswer(question, outcome.Result.DisplayText)
	}

	s.mu.Lock()
	s.last = &outcome
	s.mu.Unlock()

	s.logger.Debugw("question answered", "kind", outcome.Kind, "session", s.history.SessionID())
	return outcome, nil
}

// recordAnswer is the only place history is written
func (s *Session) recordAnswer(question, answer string) {
	s.history.Record(question, answer)
}

// Current asks the backend which file it has loaded
func (s *Session) Current(ctx context.Context) (*backend.CurrentResponse, error) {
	return s.backend.Current(ctx)
}

// Filename returns the last successfully uploaded file, or ""
func (s *Session) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filename
}

// Last returns the most recently resolved outcome, or nil
func (s *Session) Last() *interpreter.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// History returns the session's question log
func (s *Session) History() *history.Log {
	return s.history
}
