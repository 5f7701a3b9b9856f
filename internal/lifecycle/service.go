// Package lifecycle sequences item, issue and return writes. Every entry point
// runs as one transaction and is retried as a whole when it loses a race.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
)

// DefaultMaxAttempts is used when Config.MaxAttempts is not positive.
const DefaultMaxAttempts = 3

// Operation names used in logs and metrics.
const (
	OpCreateIssue    = "create_issue"
	OpCreateReturn   = "create_return"
	OpReceiveMissing = "receive_missing"
	OpUpdateRemarks  = "update_remarks"
)

type recorder interface {
	Observe(operation, outcome string, d time.Duration)
	ConflictRetry(operation string)
}

type noopRecorder struct{}

func (noopRecorder) Observe(string, string, time.Duration) {}
func (noopRecorder) ConflictRetry(string)                  {}

// Config tunes the orchestrator.
type Config struct {
	// MaxAttempts bounds how often a transaction that hit ErrConflict runs.
	MaxAttempts int
}

// Service is the lifecycle orchestrator.
type Service struct {
	db          *sql.DB
	log         *slog.Logger
	metrics     recorder
	maxAttempts int
}

// NewService creates a lifecycle service. metrics may be nil.
func NewService(log *slog.Logger, database *sql.DB, metrics recorder, cfg Config) *Service {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &Service{
		db:          database,
		log:         log.With("service", "lifecycle"),
		metrics:     metrics,
		maxAttempts: attempts,
	}
}

// run executes fn in a transaction, rerunning it from scratch on ErrConflict.
// Every other error aborts immediately.
func (s *Service) run(ctx context.Context, op string, fn func(q db.Querier) error) error {
	start := time.Now()

	var err error
	for attempt := 1; ; attempt++ {
		err = db.RunInTx(ctx, s.db, fn)
		if err == nil || !errors.Is(err, model.ErrConflict) || attempt >= s.maxAttempts {
			break
		}
		if ctx.Err() != nil {
			break
		}
		s.log.WarnContext(ctx, "transaction conflict, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		s.metrics.ConflictRetry(op)
	}

	outcome := "ok"
	if err != nil {
		outcome = model.ErrorKind(err)
	}
	s.metrics.Observe(op, outcome, time.Since(start))

	return err
}
