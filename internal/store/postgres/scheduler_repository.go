package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/scheduler"
)

// SchedulerRepository implements scheduler.Repository. ClaimNext uses a FOR
// UPDATE SKIP LOCKED candidate select feeding an UPDATE ... RETURNING, so
// concurrent workers never claim the same row twice.
type SchedulerRepository struct {
	db *Pool
}

func NewSchedulerRepository(db *Pool) *SchedulerRepository {
	return &SchedulerRepository{db: db}
}

const jobColumns = `
	id, recurring_id, handler, payload, lane, state, run_at, attempts,
	max_attempts, last_error, locked_by, locked_until, created_at, updated_at
`

func scanJob(row pgx.Row) (*scheduler.Job, error) {
	var j scheduler.Job
	var id uuid.UUID
	var lane, state string
	err := row.Scan(
		&id, &j.RecurringID, &j.Handler, &j.Payload, &lane, &state, &j.RunAt,
		&j.Attempts, &j.MaxAttempts, &j.LastError, &j.LockedBy, &j.LockedUntil,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.ID = ids.JobID(id)
	j.Lane = scheduler.Lane(lane)
	j.State = scheduler.State(state)
	return &j, nil
}

func (r *SchedulerRepository) InsertJob(ctx context.Context, job *scheduler.Job) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO jobs (
			id, recurring_id, handler, payload, lane, state, run_at, attempts,
			max_attempts, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
	`,
		uuid.UUID(job.ID), job.RecurringID, job.Handler, job.Payload, string(job.Lane),
		string(job.State), job.RunAt, job.Attempts, job.MaxAttempts, job.CreatedAt,
	)
	if err != nil {
		return domainerr.Internal("failed to insert job", err)
	}
	return nil
}

func (r *SchedulerRepository) ClaimNext(ctx context.Context, lanes []scheduler.Lane, lockedBy string, invisibility time.Duration) (*scheduler.Job, error) {
	laneNames := make([]string, len(lanes))
	for i, l := range lanes {
		laneNames[i] = string(l)
	}
	lockedUntil := time.Now().UTC().Add(invisibility)

	row := r.db.QueryRow(ctx, `
		WITH candidate AS (
			SELECT id FROM jobs
			WHERE lane = ANY($1)
			AND state IN ('enqueued', 'failed_retry_pending')
			AND run_at <= NOW()
			AND (locked_until IS NULL OR locked_until < NOW())
			ORDER BY run_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE jobs SET state = 'processing', locked_by = $2, locked_until = $3, updated_at = NOW()
		FROM candidate
		WHERE jobs.id = candidate.id
		RETURNING `+"jobs."+`id, jobs.recurring_id, jobs.handler, jobs.payload, jobs.lane, jobs.state,
			jobs.run_at, jobs.attempts, jobs.max_attempts, jobs.last_error, jobs.locked_by,
			jobs.locked_until, jobs.created_at, jobs.updated_at
	`, laneNames, lockedBy, lockedUntil)

	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, domainerr.Internal("failed to claim job", err)
	}
	return job, nil
}

func (r *SchedulerRepository) MarkSucceeded(ctx context.Context, id ids.JobID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE jobs SET state = 'succeeded', locked_by = NULL, locked_until = NULL,
			last_error = NULL, updated_at = NOW()
		WHERE id = $1
	`, uuid.UUID(id))
	if err != nil {
		return domainerr.Internal("failed to mark job succeeded", err)
	}
	if tag.RowsAffected() == 0 {
		return domainerr.NotFound("job not found")
	}
	return nil
}

// MarkFailed increments the attempt count and moves the job either back to
// failed_retry_pending (to be reclaimed later) or to failed_dead once
// maxAttempts is exhausted.
func (r *SchedulerRepository) MarkFailed(ctx context.Context, id ids.JobID, jobErr error, maxAttempts int) error {
	msg := jobErr.Error()
	tag, err := r.db.Exec(ctx, `
		UPDATE jobs SET
			attempts = attempts + 1,
			last_error = $2,
			locked_by = NULL,
			locked_until = NULL,
			state = CASE WHEN attempts + 1 >= $3 THEN 'failed_dead' ELSE 'failed_retry_pending' END,
			run_at = CASE WHEN attempts + 1 >= $3 THEN run_at ELSE NOW() + (attempts + 1) * INTERVAL '1 minute' END,
			updated_at = NOW()
		WHERE id = $1
	`, uuid.UUID(id), msg, maxAttempts)
	if err != nil {
		return domainerr.Internal("failed to mark job failed", err)
	}
	if tag.RowsAffected() == 0 {
		return domainerr.NotFound("job not found")
	}
	return nil
}

func (r *SchedulerRepository) Delete(ctx context.Context, id ids.JobID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return false, domainerr.Internal("failed to delete job", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SchedulerRepository) DeleteByRecurringID(ctx context.Context, recurringID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE recurring_id = $1`, recurringID)
	if err != nil {
		return false, domainerr.Internal("failed to delete jobs by recurring id", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SchedulerRepository) UpsertSchedule(ctx context.Context, sched scheduler.RecurringSchedule) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO recurring_schedules (recurring_id, cron_expr, handler, payload, lane, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		ON CONFLICT (recurring_id) DO UPDATE SET
			cron_expr = EXCLUDED.cron_expr,
			handler = EXCLUDED.handler,
			payload = EXCLUDED.payload,
			lane = EXCLUDED.lane,
			updated_at = NOW()
	`, sched.RecurringID, sched.CronExpr, sched.Handler, sched.Payload, string(sched.Lane))
	if err != nil {
		return domainerr.Internal("failed to upsert recurring schedule", err)
	}
	return nil
}

func (r *SchedulerRepository) GetSchedule(ctx context.Context, recurringID string) (*scheduler.RecurringSchedule, error) {
	var sched scheduler.RecurringSchedule
	var lane string
	err := r.db.QueryRow(ctx, `
		SELECT recurring_id, cron_expr, handler, payload, lane FROM recurring_schedules WHERE recurring_id = $1
	`, recurringID).Scan(&sched.RecurringID, &sched.CronExpr, &sched.Handler, &sched.Payload, &lane)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.NotFound("recurring schedule not found")
		}
		return nil, domainerr.Internal("failed to load recurring schedule", err)
	}
	sched.Lane = scheduler.Lane(lane)
	return &sched, nil
}

func (r *SchedulerRepository) StateCounts(ctx context.Context) (scheduler.StateCounts, error) {
	rows, err := r.db.Query(ctx, `SELECT state, COUNT(*) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, domainerr.Internal("failed to count jobs by state", err)
	}
	defer rows.Close()

	counts := make(scheduler.StateCounts)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, domainerr.Internal("failed to scan job state count", err)
		}
		counts[scheduler.State(state)] = count
	}
	return counts, rows.Err()
}

func (r *SchedulerRepository) History(ctx context.Context, limit int) ([]*scheduler.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, domainerr.Internal("failed to load job history", err)
	}
	defer rows.Close()

	var out []*scheduler.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, domainerr.Internal("failed to scan job", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
