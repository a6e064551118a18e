package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/example/placementbot/pkg/models"
)

// Header is the column layout of the results log
var Header = []string{"timestamp", "chat_id", "username", "normalized_answers", "score", "level", "top_topics"}

// CSVSink appends results to a CSV file, writing the header when the file
// is new. Appends are serialized.
type CSVSink struct {
	path string
	mu   sync.Mutex
}

// NewCSVSink creates a sink for the given path
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Path returns the file the sink writes to
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one row
func (s *CSVSink) Append(_ context.Context, record models.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	info, statErr := os.Stat(s.path)
	isNew := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(Row(record)); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush results file: %w", err)
	}
	return nil
}

// Row renders a record in Header order
func Row(record models.ResultRecord) []string {
	return []string{
		record.StartedAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(record.UserID, 10),
		record.Username,
		record.JoinedAnswers(),
		strconv.Itoa(record.Score),
		record.Level,
		record.TopTopics,
	}
}
