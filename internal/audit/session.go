// Package audit writes the plain-text log of an autonomous run: every prompt,
// model reply, pick and bet, tagged so a reviewer can follow the run later.
package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tags used by the prediction pipeline.
const (
	TagBetPrompt      = "BET PROMPT"
	TagBetInfo        = "BET INFO"
	TagPrediction     = "PREDICTION"
	TagGroupPrompt    = "GROUP PROMPT"
	TagGroupList      = "GROUP LIST"
	TagSelectedGroup  = "SELECTED GROUP"
	TagMarketPrompt   = "MARKET PROMPT"
	TagMarketList     = "MARKET LIST"
	TagSelectedMarket = "SELECTED MARKET"
	TagBet            = "BET"
	TagComment        = "COMMENT"
)

const (
	fileTimeLayout  = "2006-01-02_15-04-05"
	entryTimeLayout = "2006-01-02 15:04:05,000"
)

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return "gpt_manifold_" + t.Format(fileTimeLayout) + ".log"
}

// Session appends entries to one run's log file. A nil *Session discards
// everything, so callers outside autonomous mode can pass nil.
//
// It is safe for concurrent use.
type Session struct {
	ID   string
	Path string

	mu   sync.Mutex
	now  func() time.Time
	file *os.File
	w    *bufio.Writer
}

// NewSession creates <dir>/gpt_manifold_<timestamp>.log and writes a header
// carrying a fresh session id. An empty dir means the working directory.
func NewSession(dir string, now func() time.Time) (*Session, error) {
	if now == nil {
		now = time.Now
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	started := now()
	path := filepath.Join(dir, FileName(started))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}

	s := &Session{
		ID:   uuid.NewString(),
		Path: path,
		now:  now,
		file: f,
		w:    bufio.NewWriter(f),
	}
	header := fmt.Sprintf("%s - Log Session - INFO - session %s started\n\n",
		started.Format(entryTimeLayout), s.ID)
	if _, err := s.w.WriteString(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing session header: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing session header: %w", err)
	}
	return s, nil
}

// Write appends one tagged entry and flushes it to disk.
func (s *Session) Write(tag, message string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}

	entry := fmt.Sprintf("%s - Log Session - INFO - [%s]\n\n%s\n\n",
		s.now().Format(entryTimeLayout), tag, message)
	if _, err := s.w.WriteString(entry); err != nil {
		return fmt.Errorf("writing %s entry: %w", tag, err)
	}
	return s.w.Flush()
}

// Close flushes and closes the file. Later writes are dropped.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.w != nil {
		if err := s.w.Flush(); err != nil {
			firstErr = err
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.w = nil
	s.file = nil

	if firstErr != nil && errors.Is(firstErr, os.ErrClosed) {
		return nil
	}
	return firstErr
}
