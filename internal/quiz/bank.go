package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTopic is used for questions that have no metadata
const DefaultTopic = "General"

// Letters are the choice labels, in order
var Letters = []string{"a", "b", "c"}

var (
	// ErrInvalidBank is returned when a question bank fails validation
	ErrInvalidBank = errors.New("invalid question bank")
	// ErrOutOfRange is returned when asking for a question past the end of the bank
	ErrOutOfRange = errors.New("question index out of range")
)

// Question is a single multiple-choice prompt. Choices carry their label
// prefix, e.g. "a) are".
type Question struct {
	Prompt  string
	Choices []string
}

// Meta is optional per-question information used for feedback
type Meta struct {
	Topic       string
	Explanation string
	Link        string
}

// Bank is an immutable, ordered set of questions with an answer key.
// Questions are numbered from 1.
type Bank struct {
	questions []Question
	key       map[int]string
	meta      map[int]Meta
}

// NewBank validates and builds a bank. Inputs are copied.
func NewBank(questions []Question, key map[int]string, meta map[int]Meta) (*Bank, error) {
	b := &Bank{
		questions: make([]Question, len(questions)),
		key:       make(map[int]string, len(key)),
		meta:      make(map[int]Meta, len(meta)),
	}
	for i, q := range questions {
		b.questions[i] = Question{
			Prompt:  q.Prompt,
			Choices: append([]string(nil), q.Choices...),
		}
	}
	for n, letter := range key {
		b.key[n] = strings.ToLower(strings.TrimSpace(letter))
	}
	for n, m := range meta {
		b.meta[n] = m
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the bank is usable: at least one question, every
// question has one labelled choice per letter, and every question number
// has exactly one key that names one of its choices.
func (b *Bank) Validate() error {
	if len(b.questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidBank)
	}
	for i, q := range b.questions {
		n := i + 1
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%w: question %d has an empty prompt", ErrInvalidBank, n)
		}
		if len(q.Choices) != len(Letters) {
			return fmt.Errorf("%w: question %d has %d choices, want %d", ErrInvalidBank, n, len(q.Choices), len(Letters))
		}
		for j, choice := range q.Choices {
			if !HasLabel(choice, Letters[j]) {
				return fmt.Errorf("%w: question %d choice %d is not labelled %q", ErrInvalidBank, n, j+1, Letters[j])
			}
		}
		letter, ok := b.key[n]
		if !ok {
			return fmt.Errorf("%w: question %d has no answer", ErrInvalidBank, n)
		}
		if !hasOption(q, letter) {
			return fmt.Errorf("%w: question %d has answer %q outside its choices", ErrInvalidBank, n, letter)
		}
	}
	for n := range b.key {
		if n < 1 || n > len(b.questions) {
			return fmt.Errorf("%w: answer for unknown question %d", ErrInvalidBank, n)
		}
	}
	return nil
}

// Len returns the number of questions
func (b *Bank) Len() int {
	return len(b.questions)
}

// Question returns the question at a 0-based index
func (b *Bank) Question(index int) (Question, error) {
	if index < 0 || index >= len(b.questions) {
		return Question{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(b.questions))
	}
	return b.questions[index], nil
}

// Answer returns the correct letter for a 1-based question number
func (b *Bank) Answer(n int) string {
	return b.key[n]
}

// Meta returns metadata for a 1-based question number. Missing entries
// come back with the default topic.
func (b *Bank) Meta(n int) Meta {
	m, ok := b.meta[n]
	if !ok || m.Topic == "" {
		m.Topic = DefaultTopic
	}
	return m
}

// Options maps a question's choices to selectable options, one per choice
func (q Question) Options() []Option {
	opts := make([]Option, 0, len(q.Choices))
	for _, choice := range q.Choices {
		opts = append(opts, Option{Label: choice, Data: NormalizeChoice(choice)})
	}
	return opts
}

// HasLabel reports whether a choice starts with "<letter>)" or "<letter>."
func HasLabel(choice, letter string) bool {
	lower := strings.ToLower(strings.TrimSpace(choice))
	return strings.HasPrefix(lower, letter+")") || strings.HasPrefix(lower, letter+".")
}

func hasOption(q Question, letter string) bool {
	if letter == "" {
		return false
	}
	for _, opt := range q.Options() {
		if opt.Data == letter {
			return true
		}
	}
	return false
}
