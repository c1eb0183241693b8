package scheduler

import (
	"context"
	"time"

	"github.com/transfa/corebank/internal/ids"
)

// Repository is the persistence surface the Manager depends on. Implemented
// on Postgres in store/postgres/scheduler_repository.go, using a
// claim-with-FOR-UPDATE-SKIP-LOCKED query so concurrent workers never claim
// the same row twice.
type Repository interface {
	InsertJob(ctx context.Context, job *Job) error
	ClaimNext(ctx context.Context, lanes []Lane, lockedBy string, invisibility time.Duration) (*Job, error)
	MarkSucceeded(ctx context.Context, id ids.JobID) error
	MarkFailed(ctx context.Context, id ids.JobID, err error, maxAttempts int) error
	Delete(ctx context.Context, id ids.JobID) (bool, error)
	DeleteByRecurringID(ctx context.Context, recurringID string) (bool, error)

	UpsertSchedule(ctx context.Context, sched RecurringSchedule) error
	GetSchedule(ctx context.Context, recurringID string) (*RecurringSchedule, error)

	StateCounts(ctx context.Context) (StateCounts, error)
	History(ctx context.Context, limit int) ([]*Job, error)
}
