// Package session tracks per-conversation state: recent turns and the
// suggestion questions already offered to the user.
package session

import (
	"strings"
	"sync"
	"time"
)

// DefaultMaxTurns bounds the per-session turn buffer when unconfigured.
const DefaultMaxTurns = 20

// Turn is one question/answer exchange.
type Turn struct {
	Query  string
	Answer string
	At     time.Time
}

// Session holds one conversation's state. Safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	id       string
	turns    []Turn
	maxTurns int
	// asked holds normalized suggestion texts already offered, so the same
	// follow-up is never suggested twice in a conversation.
	asked map[string]struct{}
	// total counts turns over the whole session, past the buffer bound.
	total int
}

// New creates a session.
func New(id string, maxTurns int) *Session {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Session{
		id:       id,
		maxTurns: maxTurns,
		asked:    make(map[string]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AddTurn records an exchange, dropping the oldest turn at capacity.
func (s *Session) AddTurn(query, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, Turn{Query: query, Answer: answer, At: time.Now()})
	if len(s.turns) > s.maxTurns {
		s.turns = s.turns[1:]
	}
	s.total++
}

// Turns returns a copy of the buffered turns, oldest first.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// TurnCount returns the total number of turns in the session, including any
// that have aged out of the buffer.
func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// MarkAsked records that a suggestion was offered.
func (s *Session) MarkAsked(suggestion string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked[normalizeSuggestion(suggestion)] = struct{}{}
}

// WasAsked reports whether a suggestion was already offered this session.
func (s *Session) WasAsked(suggestion string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.asked[normalizeSuggestion(suggestion)]
	return ok
}

func normalizeSuggestion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
