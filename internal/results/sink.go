package results

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/placementbot/pkg/models"
)

// Sink receives finished test results
type Sink interface {
	Append(ctx context.Context, record models.ResultRecord) error
}

// Store is the persistence needed by DBSink
type Store interface {
	Create(ctx context.Context, record *models.ResultRecord) error
}

// DBSink writes results through a repository
type DBSink struct {
	store Store
}

// NewDBSink creates a sink backed by store
func NewDBSink(store Store) *DBSink {
	return &DBSink{store: store}
}

// Append inserts the record
func (s *DBSink) Append(ctx context.Context, record models.ResultRecord) error {
	if err := s.store.Create(ctx, &record); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

type fanout []Sink

// Fanout returns a sink that appends to every sink in order. Each sink is
// tried even when an earlier one fails; the failures are joined.
func Fanout(sinks ...Sink) Sink {
	out := make(fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f fanout) Append(ctx context.Context, record models.ResultRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.Append(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
