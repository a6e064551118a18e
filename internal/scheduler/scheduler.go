package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/example/placementbot/pkg/models"
	"github.com/go-co-op/gocron"
)

// DefaultReportHour is the hour (UTC) the daily report is sent
const DefaultReportHour = 9

// reportWindow is how far back the daily report looks
const reportWindow = 24 * time.Hour

// Source provides stored results
type Source interface {
	GetSince(ctx context.Context, since time.Time) ([]models.ResultRecord, error)
}

// Notifier interface for sending reports
type Notifier interface {
	SendReport(userID int64, text string) error
}

// Scheduler sends a daily summary of finished tests to admins
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
	admins    []int64
	hour      int
	now       func() time.Time
}

// New creates a new scheduler instance. hour outside 0-23 falls back to
// DefaultReportHour.
func New(source Source, notifier Notifier, admins []int64, hour int) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = DefaultReportHour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
		admins:    admins,
		hour:      hour,
		now:       time.Now,
	}
}

// Start begins running the daily report job
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.hour)
	_, err := s.scheduler.Every(1).Day().At(at).Do(func() {
		if err := s.RunNow(context.Background()); err != nil {
			log.Printf("Error sending daily report: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule daily report: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow builds the report for the last day and sends it to every admin.
// Send failures are logged per admin.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if len(s.admins) == 0 {
		return nil
	}

	since := s.now().Add(-reportWindow)
	records, err := s.source.GetSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	text := BuildReport(records)
	for _, id := range s.admins {
		if err := s.notifier.SendReport(id, text); err != nil {
			log.Printf("Error sending report to admin %d: %v", id, err)
		}
	}
	return nil
}

// BuildReport summarizes results by level
func BuildReport(records []models.ResultRecord) string {
	if len(records) == 0 {
		return "📈 Daily report\n\nNo tests were finished in the last 24 hours."
	}

	counts := make(map[string]int)
	var total int
	for _, r := range records {
		counts[r.Level]++
		total += r.Score
	}

	levels := make([]string, 0, len(counts))
	for level := range counts {
		levels = append(levels, level)
	}
	sort.Strings(levels)

	var sb strings.Builder
	sb.WriteString("📈 Daily report\n\n")
	sb.WriteString(fmt.Sprintf("Finished tests: %d\n", len(records)))
	sb.WriteString(fmt.Sprintf("Average score: %.1f\n\n", float64(total)/float64(len(records))))
	for _, level := range levels {
		sb.WriteString(fmt.Sprintf("%s: %d\n", level, counts[level]))
	}
	return sb.String()
}
