// Package scheduler implements the persistent job manager: recurring jobs on
// cron schedules, one-off delayed jobs, named queue lanes drained by a
// worker pool, and a read surface for a dashboard. Cron wiring uses
// cron.New with cron.WithChain(cron.Recover(...)) and an AddFunc per
// configured schedule, generalized from a fixed set of AddFunc calls at
// boot into dynamic Schedule/Delete/Trigger operations backed by a jobs
// table, since a dashboard needs idempotent re-registration a fixed boot
// schedule never does.
package scheduler

import (
	"time"

	"github.com/transfa/corebank/internal/ids"
)

// State is a job's position in the state machine:
// Created -> Enqueued -> Processing -> {Succeeded | Failed(retry-pending) | Failed(dead)}.
type State string

const (
	StateCreated            State = "created"
	StateEnqueued           State = "enqueued"
	StateProcessing         State = "processing"
	StateSucceeded          State = "succeeded"
	StateFailedRetryPending State = "failed_retry_pending"
	StateFailedDead         State = "failed_dead"
)

// Lane is a named queue the worker pool drains from.
type Lane string

const (
	LaneDefault  Lane = "default"
	LaneCritical Lane = "critical"
	LaneLow      Lane = "low"
)

// DefaultMaxAttempts is the per-job retry bound before a job moves to the
// dead state.
const DefaultMaxAttempts = 3

// Job is one unit of work, either a one-off (RecurringID nil) or one firing
// of a recurring schedule.
type Job struct {
	ID          ids.JobID
	RecurringID *string
	Handler     string
	Payload     []byte
	Lane        Lane
	State       State
	RunAt       time.Time
	Attempts    int
	MaxAttempts int
	LastError   *string
	LockedBy    *string
	LockedUntil *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecurringSchedule is the desired (id, cron, target) triple the boot-time
// initializer writes idempotently; existing entries are updated in place.
type RecurringSchedule struct {
	RecurringID string
	CronExpr    string
	Handler     string
	Payload     []byte
	Lane        Lane
}

// StateCounts is the dashboard's headline metric: how many jobs sit in each
// state right now.
type StateCounts map[State]int

// Well-known recurring ids and their default cron expressions.
const (
	RecurringDailyStatementGeneration   = "DailyStatementGeneration"
	RecurringMonthlyInterestCalculation = "MonthlyInterestCalculation"
	RecurringAccountCleanup             = "AccountCleanup"

	DefaultDailyStatementCron   = "0 2 * * *"
	DefaultMonthlyInterestCron  = "0 1 1 * *"
	DefaultAccountCleanupCron   = "0 0 * * 0"
)
