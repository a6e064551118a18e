package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/placementbot/pkg/models"
)

type memorySink struct {
	mu      sync.Mutex
	records []models.ResultRecord
	err     error
}

func (m *memorySink) Append(_ context.Context, r models.ResultRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

func newTestController(t *testing.T, sink ResultSink) *Controller {
	t.Helper()
	c := NewController(twoQuestionBank(t), sink)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return c
}

var alice = User{ID: 42, ChatID: 42, Username: "alice", FirstName: "Alice"}

func TestStartAndHelpShowWelcome(t *testing.T) {
	c := newTestController(t, nil)
	ctx := context.Background()

	for _, cmd := range []string{"start", "/help"} {
		r := c.HandleCommand(ctx, alice, cmd)
		assert.Contains(t, r.Text, "Hi, Alice")
		assert.Contains(t, r.Text, "/test")
		assert.Empty(t, r.Options)
		assert.False(t, c.Active(alice))
	}

	r := c.HandleCommand(ctx, User{ID: 1}, "start")
	assert.Contains(t, r.Text, "Hi, friend")
}

func TestTestCommandPresentsFirstQuestion(t *testing.T) {
	c := newTestController(t, nil)

	r := c.HandleCommand(context.Background(), alice, "test")
	assert.Contains(t, r.Text, "1. One?")
	assert.False(t, r.Edit)
	require.Len(t, r.Options, 3)
	assert.Equal(t, "a", r.Options[0].Data)

	s, ok := c.Session(alice)
	require.True(t, ok)
	assert.Equal(t, 0, s.Index)
	assert.Empty(t, s.Answers)
}

func TestFullRunPersistsOnce(t *testing.T) {
	sink := &memorySink{}
	c := newTestController(t, sink)
	ctx := context.Background()

	c.HandleCommand(ctx, alice, "test")

	r := c.HandleChoice(ctx, alice, "a")
	assert.Equal(t, "2. Two?", r.Text)
	assert.True(t, r.Edit)
	assert.Len(t, r.Options, 3)

	r = c.HandleChoice(ctx, alice, "c")
	assert.Contains(t, r.Text, "Score: 1/2")
	assert.Contains(t, r.Text, "Level: A2")
	assert.Contains(t, r.Text, "past simple")
	assert.Empty(t, r.Options)
	assert.False(t, c.Active(alice))

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, int64(42), rec.UserID)
	assert.Equal(t, "alice", rec.Username)
	assert.Equal(t, []string{"a", "c"}, rec.Answers)
	assert.Equal(t, 1, rec.Score)
	assert.Equal(t, 2, rec.Total)
	assert.Equal(t, "past simple", rec.TopTopics)
	assert.Equal(t, c.now(), rec.StartedAt)
}

func TestRestartDiscardsProgress(t *testing.T) {
	sink := &memorySink{}
	c := newTestController(t, sink)
	ctx := context.Background()

	c.HandleCommand(ctx, alice, "test")
	c.HandleChoice(ctx, alice, "c")

	r := c.HandleCommand(ctx, alice, "test")
	assert.Contains(t, r.Text, "1. One?")
	s, _ := c.Session(alice)
	assert.Empty(t, s.Answers)

	c.HandleChoice(ctx, alice, "a")
	r = c.HandleChoice(ctx, alice, "b")
	assert.Contains(t, r.Text, "Score: 2/2")

	require.Len(t, sink.records, 1)
	assert.Equal(t, []string{"a", "b"}, sink.records[0].Answers)
}

func TestCancelClearsWithoutPersisting(t *testing.T) {
	sink := &memorySink{}
	c := newTestController(t, sink)
	ctx := context.Background()

	c.HandleCommand(ctx, alice, "test")
	c.HandleChoice(ctx, alice, "a")

	r := c.HandleCommand(ctx, alice, "cancel")
	assert.Contains(t, r.Text, "cancelled")
	assert.False(t, c.Active(alice))

	r = c.HandleChoice(ctx, alice, "b")
	assert.Contains(t, r.Text, "Nothing in progress")
	assert.False(t, r.Edit)
	assert.Empty(t, sink.records)
}

func TestStrayChoiceIsHarmless(t *testing.T) {
	c := newTestController(t, &memorySink{})

	r := c.HandleChoice(context.Background(), alice, "a")
	assert.Contains(t, r.Text, "Nothing in progress")
	assert.False(t, c.Active(alice))
}

func TestUnknownCommandKeepsState(t *testing.T) {
	c := newTestController(t, nil)
	ctx := context.Background()

	r := c.HandleCommand(ctx, alice, "weather")
	assert.Contains(t, r.Text, "didn't get that")
	assert.False(t, c.Active(alice))

	c.HandleCommand(ctx, alice, "test")
	c.HandleChoice(ctx, alice, "a")
	c.HandleCommand(ctx, alice, "weather")

	s, ok := c.Session(alice)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, s.Answers)
}

func TestMalformedChoiceCountsAsWrong(t *testing.T) {
	sink := &memorySink{}
	c := newTestController(t, sink)
	ctx := context.Background()

	c.HandleCommand(ctx, alice, "test")
	c.HandleChoice(ctx, alice, "???")
	r := c.HandleChoice(ctx, alice, "b")
	assert.Contains(t, r.Text, "Score: 1/2")

	require.Len(t, sink.records, 1)
	assert.Equal(t, []string{"", "b"}, sink.records[0].Answers)
	assert.Equal(t, ",b", sink.records[0].JoinedAnswers())
}

func TestSinkFailureStillReturnsSummary(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	c := newTestController(t, sink)
	ctx := context.Background()

	c.HandleCommand(ctx, alice, "test")
	c.HandleChoice(ctx, alice, "a")
	r := c.HandleChoice(ctx, alice, "b")

	assert.Contains(t, r.Text, "Score: 2/2")
	assert.False(t, c.Active(alice))
}

func TestSessionsAreIndependent(t *testing.T) {
	c := newTestController(t, &memorySink{})
	ctx := context.Background()
	bob := User{ID: 7, ChatID: 7}

	c.HandleCommand(ctx, alice, "test")
	c.HandleCommand(ctx, bob, "test")
	c.HandleChoice(ctx, alice, "a")

	a, _ := c.Session(alice)
	b, _ := c.Session(bob)
	assert.Equal(t, 1, a.Index)
	assert.Equal(t, 0, b.Index)

	c.HandleCommand(ctx, bob, "cancel")
	assert.True(t, c.Active(alice))
}

func TestSummaryListsReviewForMissedQuestions(t *testing.T) {
	c := NewController(DefaultBank(), nil)
	ctx := context.Background()

	c.HandleCommand(ctx, alice, "test")
	var r Reply
	for i := 0; i < c.Bank().Len(); i++ {
		r = c.HandleChoice(ctx, alice, "a")
	}

	assert.Contains(t, r.Text, "Review:")
	assert.Contains(t, r.Text, "Q1 (to be / subject-verb agreement)")
	assert.NotContains(t, r.Text, "Q2 (")
}

func TestSummaryShowsTimeTaken(t *testing.T) {
	c := newTestController(t, nil)
	ctx := context.Background()
	start := c.now()

	c.HandleCommand(ctx, alice, "test")
	c.HandleChoice(ctx, alice, "a")
	c.now = func() time.Time { return start.Add(3*time.Minute + 12*time.Second + 400*time.Millisecond) }
	r := c.HandleChoice(ctx, alice, "b")

	assert.Contains(t, r.Text, "Time: 3m12s")
}

func TestSummaryReviewFitsInOneMessage(t *testing.T) {
	const n = 25
	qs := make([]Question, n)
	key := make(map[int]string, n)
	meta := make(map[int]Meta, n)
	for i := 0; i < n; i++ {
		qs[i] = Question{Prompt: fmt.Sprintf("%d. Q?", i+1), Choices: []string{"a) x", "b) y", "c) z"}}
		key[i+1] = "a"
		meta[i+1] = Meta{
			Topic:       fmt.Sprintf("topic %d", i+1),
			Explanation: strings.Repeat("Remember how this construction works in context. ", 3),
			Link:        fmt.Sprintf("https://example.com/grammar/lessons/%d", i+1),
		}
	}
	b, err := NewBank(qs, key, meta)
	require.NoError(t, err)

	c := NewController(b, nil)
	ctx := context.Background()
	c.HandleCommand(ctx, alice, "test")
	var r Reply
	for i := 0; i < n; i++ {
		r = c.HandleChoice(ctx, alice, "b")
	}

	assert.LessOrEqual(t, utf8.RuneCountInString(r.Text), MaxReplyRunes)
	assert.Contains(t, r.Text, "Score: 0/25")
	assert.Contains(t, r.Text, "Level: A1")
	assert.Contains(t, r.Text, "Q1 (topic 1)")
	assert.NotContains(t, r.Text, "Q25 (topic 25)")
	assert.True(t, strings.HasSuffix(r.Text, "…"))
}

func TestSummaryReviewUntouchedWhenShort(t *testing.T) {
	c := NewController(DefaultBank(), nil)
	ctx := context.Background()

	c.HandleCommand(ctx, alice, "test")
	var r Reply
	for i := 0; i < c.Bank().Len(); i++ {
		r = c.HandleChoice(ctx, alice, "a")
	}

	assert.False(t, strings.HasSuffix(r.Text, "…"))
}
