package models

import (
	"strings"
	"time"
)

// ResultRecord is one finished placement test, as written to the result log
type ResultRecord struct {
	ID        int64     `json:"id" db:"id"`
	StartedAt time.Time `json:"started_at" db:"started_at"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"` // May be empty
	Answers   []string  `json:"answers" db:"-"`         // Normalized letters, "" for no answer
	Score     int       `json:"score" db:"score"`
	Total     int       `json:"total" db:"total"`
	Level     string    `json:"level" db:"level"`
	TopTopics string    `json:"top_topics" db:"top_topics"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// JoinedAnswers returns the answers as a comma-joined string
func (r ResultRecord) JoinedAnswers() string {
	return strings.Join(r.Answers, ",")
}

// SplitAnswers parses a comma-joined answer string back into letters
func SplitAnswers(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
