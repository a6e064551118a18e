package quiz

import (
	"fmt"
	"sort"
	"strings"
)

// Proficiency levels, lowest to highest
const (
	LevelA1 = "A1"
	LevelA2 = "A2"
	LevelB1 = "B1"
	LevelB2 = "B2"
)

// NoTopics is reported when nothing was missed
const NoTopics = "None"

// topTopicsLimit is how many weak topics are reported
const topTopicsLimit = 3

// GradeResult is the outcome of grading a finished session
type GradeResult struct {
	Score     int
	Total     int
	Level     string
	Feedback  []string
	TopTopics string
	Missed    []int // 1-based numbers of wrong answers
}

// LevelFor bands a score out of n into A1/A2/B1/B2. The bands keep the
// 10/15/20 out of 25 split for any n.
func LevelFor(score, n int) string {
	switch {
	case score*25 <= 10*n:
		return LevelA1
	case score*25 <= 15*n:
		return LevelA2
	case score*25 <= 20*n:
		return LevelB1
	default:
		return LevelB2
	}
}

// Grade scores answers against the bank. answers[i] is the answer to
// question i+1; missing entries count as wrong.
func Grade(bank *Bank, answers []string) GradeResult {
	n := bank.Len()
	res := GradeResult{
		Total:    n,
		Feedback: make([]string, 0, n),
		Missed:   make([]int, 0),
	}

	var order []string
	counts := make(map[string]int)

	for i := 1; i <= n; i++ {
		letter := ""
		if i <= len(answers) {
			letter = answers[i-1]
		}
		correct := bank.Answer(i)
		meta := bank.Meta(i)

		status := "✅ OK"
		if letter != "" && letter == correct {
			res.Score++
		} else {
			status = "❌ WRONG"
			res.Missed = append(res.Missed, i)
			if _, seen := counts[meta.Topic]; !seen {
				order = append(order, meta.Topic)
			}
			counts[meta.Topic]++
		}

		shown := letter
		if shown == "" {
			shown = "—"
		}
		res.Feedback = append(res.Feedback,
			fmt.Sprintf("Q%d: %s  (you: %s  |  correct: %s)\n• %s", i, status, shown, correct, meta.Topic))
	}

	res.Level = LevelFor(res.Score, n)
	res.TopTopics = rankTopics(order, counts)
	return res
}

// rankTopics orders topics by miss count, keeping first-seen order on ties
func rankTopics(order []string, counts map[string]int) string {
	if len(order) == 0 {
		return NoTopics
	}
	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > topTopicsLimit {
		ranked = ranked[:topTopicsLimit]
	}
	return strings.Join(ranked, "; ")
}
