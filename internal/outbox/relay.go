package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/transfa/corebank/internal/dispatcher"
	"github.com/transfa/corebank/internal/events"
)

// Repository is the subset of store.OutboxRepository the relay depends on.
// Declared locally (rather than importing store) to keep this package
// dependency-light; store/postgres.OutboxRepository satisfies it.
type Repository interface {
	FetchPending(ctx context.Context, limit int, maxRetries int) ([]*Message, error)
	SaveBatch(ctx context.Context, rows []*Message) error
}

const (
	// DefaultPollInterval is the relay's sleep between polling attempts.
	DefaultPollInterval = 30 * time.Second
	// DefaultBatchSize is how many pending rows one poll fetches at most.
	DefaultBatchSize = 20
)

// Relay is the long-running task that polls for pending outbox rows,
// resolves each back into its concrete domain event, publishes it to the
// shared dispatcher, and records the outcome — all rows from one poll saved
// together in a single transaction. A ticker-driven poll loop that calls
// through the same in-process dispatcher the command pipeline uses, rather
// than publishing to a single fixed external target.
type Relay struct {
	repo         Repository
	dispatcher   *dispatcher.Dispatcher
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
}

func NewRelay(repo Repository, d *dispatcher.Dispatcher, logger *slog.Logger) *Relay {
	return &Relay{
		repo:         repo,
		dispatcher:   d,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		batchSize:    DefaultBatchSize,
		maxRetries:   MaxRetries,
	}
}

func (r *Relay) WithPollInterval(d time.Duration) *Relay {
	r.pollInterval = d
	return r
}

func (r *Relay) WithBatchSize(n int) *Relay {
	r.batchSize = n
	return r
}

// Run blocks, polling until ctx is cancelled. Intended to run in its own
// goroutine, started at boot and stopped on shutdown.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.flushOnce(ctx); err != nil {
				if r.logger != nil {
					r.logger.Error("outbox relay poll failed", slog.Any("error", err))
				}
			}
		}
	}
}

func (r *Relay) flushOnce(ctx context.Context) error {
	rows, err := r.repo.FetchPending(ctx, r.batchSize, r.maxRetries)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, row := range rows {
		r.attempt(ctx, row, now)
	}

	return r.repo.SaveBatch(ctx, rows)
}

func (r *Relay) attempt(ctx context.Context, row *Message, now time.Time) {
	row.LastAttemptedAt = &now

	event, err := events.Decode(row.Type, row.Payload)
	if err != nil {
		r.fail(row, err)
		return
	}
	if event == nil {
		// Unknown type tag: mark processed and log a warning rather than
		// retrying forever.
		if r.logger != nil {
			r.logger.Warn("outbox message has unrecognized type tag, marking processed",
				slog.String("outbox_id", row.ID.String()),
				slog.String("type", row.Type),
			)
		}
		row.ProcessedOn = &now
		row.LastError = nil
		return
	}

	if err := r.dispatcher.Publish(ctx, event); err != nil {
		r.fail(row, err)
		return
	}
	row.ProcessedOn = &now
	row.LastError = nil
}

func (r *Relay) fail(row *Message, err error) {
	row.RetryCount++
	msg := err.Error()
	row.LastError = &msg
}
