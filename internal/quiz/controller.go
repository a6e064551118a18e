package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/example/placementbot/pkg/models"
)

// Recognized commands
const (
	CommandStart  = "start"
	CommandHelp   = "help"
	CommandTest   = "test"
	CommandCancel = "cancel"
)

// MaxReplyRunes is the longest text a single chat message may carry
const MaxReplyRunes = 4096

const (
	reviewHeader    = "\n\n🔎 Review:\n"
	entrySeparator  = "\n\n"
	reviewTruncated = "…"
)

// Option is one selectable answer attached to a reply
type Option struct {
	Label string
	Data  string
}

// Reply is an outbound message. Edit asks the transport to replace the
// message the choice was made on instead of sending a new one.
type Reply struct {
	Text    string
	Options []Option
	Edit    bool
}

// User identifies who an event came from
type User struct {
	ID        int64
	ChatID    int64
	Username  string
	FirstName string
}

// ResultSink receives finished sessions. Implementations must be safe for
// concurrent use.
type ResultSink interface {
	Append(ctx context.Context, record models.ResultRecord) error
}

type sessionKey struct {
	userID int64
	chatID int64
}

// Controller drives the placement test conversation. It owns one session
// per user and chat; a user without a session is idle.
type Controller struct {
	bank *Bank
	sink ResultSink
	now  func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

// NewController creates a controller. sink may be nil.
func NewController(bank *Bank, sink ResultSink) *Controller {
	return &Controller{
		bank:     bank,
		sink:     sink,
		now:      time.Now,
		sessions: make(map[sessionKey]*Session),
	}
}

// Bank returns the question bank in use
func (c *Controller) Bank() *Bank {
	return c.bank
}

// Active reports whether the user has a test in progress
func (c *Controller) Active(user User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[keyFor(user)]
	return ok
}

// Session returns a copy of the user's session, if any
func (c *Controller) Session(user User) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[keyFor(user)]
	if !ok {
		return Session{}, false
	}
	cp := *s
	cp.Answers = append([]string(nil), s.Answers...)
	return cp, true
}

// HandleCommand reacts to a chat command (without the leading slash)
func (c *Controller) HandleCommand(ctx context.Context, user User, command string) Reply {
	switch strings.ToLower(strings.TrimPrefix(command, "/")) {
	case CommandStart, CommandHelp:
		return Reply{Text: welcomeText(user, c.bank.Len())}
	case CommandTest:
		return c.startTest(user)
	case CommandCancel:
		return c.cancelTest(user)
	default:
		return Reply{Text: "I didn't get that command. Use /test to begin or /cancel to quit."}
	}
}

// HandleChoice records an answer button press and moves the test along
func (c *Controller) HandleChoice(ctx context.Context, user User, data string) Reply {
	key := keyFor(user)

	c.mu.Lock()
	s, ok := c.sessions[key]
	if !ok {
		c.mu.Unlock()
		return Reply{Text: "Nothing in progress. Send /test to start the test."}
	}

	s.RecordAnswer(c.bank, data)
	if !s.IsComplete(c.bank) {
		q, err := s.CurrentQuestion(c.bank)
		c.mu.Unlock()
		if err != nil {
			log.Printf("Error getting next question for user %d: %v", user.ID, err)
			return Reply{Text: "Something went wrong. Send /test to start again."}
		}
		return Reply{Text: q.Prompt, Options: q.Options(), Edit: true}
	}

	delete(c.sessions, key)
	c.mu.Unlock()

	return c.finish(ctx, user, s)
}

func (c *Controller) startTest(user User) Reply {
	s := NewSession(c.now())

	c.mu.Lock()
	c.sessions[keyFor(user)] = s
	c.mu.Unlock()

	q, err := s.CurrentQuestion(c.bank)
	if err != nil {
		log.Printf("Error getting first question: %v", err)
		return Reply{Text: "The test is not available right now."}
	}
	return Reply{
		Text:    "✅ Let's begin!\n\n" + q.Prompt,
		Options: q.Options(),
	}
}

func (c *Controller) cancelTest(user User) Reply {
	c.mu.Lock()
	delete(c.sessions, keyFor(user))
	c.mu.Unlock()

	return Reply{Text: "🛑 Test cancelled. Send /test to start again."}
}

// finish grades a completed session, persists it and builds the summary.
// A failed append is logged and does not change the reply.
func (c *Controller) finish(ctx context.Context, user User, s *Session) Reply {
	res := Grade(c.bank, s.Answers)

	if c.sink != nil {
		record := models.ResultRecord{
			StartedAt: s.StartedAt,
			UserID:    user.ID,
			Username:  user.Username,
			Answers:   append([]string(nil), s.Answers...),
			Score:     res.Score,
			Total:     res.Total,
			Level:     res.Level,
			TopTopics: res.TopTopics,
		}
		if err := c.sink.Append(ctx, record); err != nil {
			log.Printf("Error saving result for user %d: %v", user.ID, err)
		}
	}

	return Reply{Text: c.summary(res, s.Elapsed(c.now())), Edit: true}
}

func (c *Controller) summary(res GradeResult, elapsed time.Duration) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 Done!\n\n📊 Score: %d/%d   |   Level: %s\n⏱ Time: %s\n\n📚 Top topics: %s",
		res.Score, res.Total, res.Level, formatElapsed(elapsed), res.TopTopics))

	var review []string
	for _, n := range res.Missed {
		meta := c.bank.Meta(n)
		if meta.Explanation == "" && meta.Link == "" {
			continue
		}
		line := fmt.Sprintf("Q%d (%s)", n, meta.Topic)
		if meta.Explanation != "" {
			line += ": " + meta.Explanation
		}
		if meta.Link != "" {
			line += "\n" + meta.Link
		}
		review = append(review, line)
	}
	if len(review) == 0 {
		return sb.String()
	}

	// Entries that would push the message past MaxReplyRunes are dropped
	// and replaced by a single ellipsis.
	budget := MaxReplyRunes - utf8.RuneCountInString(sb.String()) -
		utf8.RuneCountInString(reviewHeader) - utf8.RuneCountInString(entrySeparator+reviewTruncated)
	kept := 0
	used := 0
	for _, line := range review {
		cost := utf8.RuneCountInString(line)
		if kept > 0 {
			cost += utf8.RuneCountInString(entrySeparator)
		}
		if used+cost > budget {
			break
		}
		used += cost
		kept++
	}

	sb.WriteString(reviewHeader)
	sb.WriteString(strings.Join(review[:kept], entrySeparator))
	if kept < len(review) {
		if kept > 0 {
			sb.WriteString(entrySeparator)
		}
		sb.WriteString(reviewTruncated)
	}
	return sb.String()
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}

func welcomeText(user User, count int) string {
	name := user.FirstName
	if name == "" {
		name = "friend"
	}
	return fmt.Sprintf("👋 Hi, %s!\n\n"+
		"🎯 This is the English Placement Bot.\n\n"+
		"Commands:\n"+
		"• /test - take the quick test (%d questions)\n"+
		"• /cancel - cancel the current test\n\n"+
		"Send /test to begin. Good luck! 🚀", name, count)
}

func keyFor(user User) sessionKey {
	return sessionKey{userID: user.ID, chatID: user.ChatID}
}
