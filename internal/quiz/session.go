package quiz

import (
	"strings"
	"time"
)

// Session is one user's attempt at the bank. Index always equals len(Answers).
type Session struct {
	Answers   []string
	Index     int
	StartedAt time.Time
}

// NewSession creates an empty session started at now
func NewSession(now time.Time) *Session {
	return &Session{
		Answers:   make([]string, 0),
		StartedAt: now,
	}
}

// NormalizeChoice reduces raw input to "a", "b" or "c", or "" when the
// input is empty or not recognized.
func NormalizeChoice(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	switch s[0] {
	case 'a', 'b', 'c':
		return s[:1]
	}
	return ""
}

// RecordAnswer normalizes and appends a choice. Malformed input is kept as
// the empty marker. Once the session is complete further answers are ignored.
func (s *Session) RecordAnswer(bank *Bank, raw string) string {
	letter := NormalizeChoice(raw)
	if s.IsComplete(bank) {
		return letter
	}
	s.Answers = append(s.Answers, letter)
	s.Index = len(s.Answers)
	return letter
}

// IsComplete reports whether every question has an answer
func (s *Session) IsComplete(bank *Bank) bool {
	return s.Index >= bank.Len()
}

// CurrentQuestion returns the question to ask next. It fails with
// ErrOutOfRange once the session is complete.
func (s *Session) CurrentQuestion(bank *Bank) (Question, error) {
	return bank.Question(s.Index)
}

// Elapsed returns the time since the session started
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}
