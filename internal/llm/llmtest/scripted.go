// Package llmtest provides a scripted Completer for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"
)

// Call is one recorded completion request.
type Call struct {
	Model  string
	System string
	User   string
}

// Scripted returns its replies in order and records every call. It fails
// once the replies run out.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	calls   []Call
}

// NewScripted creates a completer that answers with replies in order.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

// Complete implements llm.Completer.
func (s *Scripted) Complete(_ context.Context, model, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Model: model, System: system, User: user})
	if len(s.replies) == 0 {
		return "", fmt.Errorf("llmtest: no scripted reply for call %d", len(s.calls))
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

// Calls returns the calls received so far.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}
