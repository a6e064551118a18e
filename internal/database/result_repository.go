package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/placementbot/pkg/models"
)

// ResultRepository handles database operations for placement test results
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new repository instance
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// LevelCount is the number of results at one level
type LevelCount struct {
	Level string `db:"level"`
	Count int    `db:"count"`
}

type resultRow struct {
	models.ResultRecord
	Answers string `db:"answers"`
}

func (r resultRow) record() models.ResultRecord {
	rec := r.ResultRecord
	rec.Answers = models.SplitAnswers(r.Answers)
	return rec
}

const resultColumns = `id, started_at, user_id, username, answers, score, total, level, top_topics, created_at`

// Create inserts a new result
func (r *ResultRepository) Create(ctx context.Context, result *models.ResultRecord) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO test_results (
			started_at, user_id, username, answers,
			score, total, level, top_topics, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query,
		result.StartedAt.UTC(),
		result.UserID,
		result.Username,
		result.JoinedAnswers(),
		result.Score,
		result.Total,
		result.Level,
		result.TopTopics,
		result.CreatedAt.UTC(),
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to create test result: %w", err)
	}
	return nil
}

// GetAll returns every result, oldest first
func (r *ResultRepository) GetAll(ctx context.Context) ([]models.ResultRecord, error) {
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+resultColumns+` FROM test_results ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get test results: %w", err)
	}
	return toRecords(rows), nil
}

// GetSince returns results stored at or after since, oldest first
func (r *ResultRepository) GetSince(ctx context.Context, since time.Time) ([]models.ResultRecord, error) {
	var rows []resultRow
	query := r.db.Rebind(`SELECT ` + resultColumns + ` FROM test_results WHERE created_at >= ? ORDER BY id ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get test results: %w", err)
	}
	return toRecords(rows), nil
}

// GetByUserID returns all results for a user, newest first
func (r *ResultRepository) GetByUserID(ctx context.Context, userID int64) ([]models.ResultRecord, error) {
	var rows []resultRow
	query := r.db.Rebind(`SELECT ` + resultColumns + ` FROM test_results WHERE user_id = ? ORDER BY id DESC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get test results: %w", err)
	}
	return toRecords(rows), nil
}

// LevelCounts returns how many results were stored at each level since
// the given time. A zero time counts everything.
func (r *ResultRepository) LevelCounts(ctx context.Context, since time.Time) ([]LevelCount, error) {
	var counts []LevelCount
	query := r.db.Rebind(`
		SELECT level, COUNT(*) AS count
		FROM test_results
		WHERE created_at >= ?
		GROUP BY level
		ORDER BY level ASC
	`)
	if err := r.db.SelectContext(ctx, &counts, query, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to count levels: %w", err)
	}
	return counts, nil
}

func toRecords(rows []resultRow) []models.ResultRecord {
	out := make([]models.ResultRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out
}
