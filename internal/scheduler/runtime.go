package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/transfa/corebank/internal/ids"
)

// HandlerFunc executes one job's payload. Handlers are registered by name
// and looked up when a job is claimed.
type HandlerFunc func(ctx context.Context, payload []byte) error

// DefaultInvisibilityTimeout bounds how long a claimed job stays hidden from
// other workers before it is eligible to be reclaimed, guarding against a
// worker crashing mid-execution.
const DefaultInvisibilityTimeout = 5 * time.Minute

// DefaultWorkerCount is how many goroutines poll each lane concurrently.
const DefaultWorkerCount = 2

// DefaultPollInterval is how often each worker checks its lane for work.
const DefaultPollInterval = 2 * time.Second

// Manager is the persistent job manager: Enqueue/Schedule/Delete/Trigger
// plus a worker pool draining named lanes, and a read surface for a
// dashboard. Cron registration follows
// scheduler-service/internal/app/scheduler.go's
// cron.New(cron.WithChain(cron.Recover(...))) convention so a panicking
// handler cannot kill the whole scheduler goroutine.
type Manager struct {
	repo   Repository
	lease  *Lease
	logger *slog.Logger

	mu          sync.RWMutex
	handlers    map[string]HandlerFunc
	cronEntries map[string]cron.EntryID

	cron         *cron.Cron
	lanes        []Lane
	workerCount  int
	invisibility time.Duration
	pollInterval time.Duration
	instanceID   string

	stop    chan struct{}
	wg      sync.WaitGroup
	started bool
}

type Option func(*Manager)

func WithLanes(lanes ...Lane) Option {
	return func(m *Manager) { m.lanes = lanes }
}

func WithWorkerCount(n int) Option {
	return func(m *Manager) { m.workerCount = n }
}

func WithInvisibilityTimeout(d time.Duration) Option {
	return func(m *Manager) { m.invisibility = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollInterval = d }
}

func NewManager(repo Repository, lease *Lease, logger *slog.Logger, instanceID string, opts ...Option) *Manager {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	m := &Manager{
		repo:        repo,
		lease:       lease,
		logger:      logger,
		handlers:    make(map[string]HandlerFunc),
		cronEntries: make(map[string]cron.EntryID),
		cron:        cron.New(cron.WithChain(cron.Recover(cronLogger))),
		lanes:       []Lane{LaneDefault, LaneCritical, LaneLow},
		workerCount: DefaultWorkerCount,
		invisibility: DefaultInvisibilityTimeout,
		pollInterval: DefaultPollInterval,
		instanceID:   instanceID,
		stop:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterHandler binds name to fn so claimed jobs referencing it can run.
func (m *Manager) RegisterHandler(name string, fn HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[name] = fn
}

// Enqueue schedules a one-off job to run after delay.
func (m *Manager) Enqueue(ctx context.Context, handler string, payload []byte, delay time.Duration, lane Lane) (ids.JobID, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:          ids.NewJobID(),
		Handler:     handler,
		Payload:     payload,
		Lane:        lane,
		State:       StateEnqueued,
		RunAt:       now.Add(delay),
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.repo.InsertJob(ctx, job); err != nil {
		return ids.JobID{}, err
	}
	return job.ID, nil
}

// Schedule (re)registers a recurring job. Same recurringID overwrites the
// prior cron expression, handler and arguments (idempotent).
func (m *Manager) Schedule(ctx context.Context, recurringID, handler, cronExpr string, payload []byte, lane Lane) error {
	sched := RecurringSchedule{RecurringID: recurringID, CronExpr: cronExpr, Handler: handler, Payload: payload, Lane: lane}
	if err := m.repo.UpsertSchedule(ctx, sched); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entryID, ok := m.cronEntries[recurringID]; ok {
		m.cron.Remove(entryID)
	}
	entryID, err := m.cron.AddFunc(cronExpr, func() {
		if _, err := m.enqueueFromSchedule(context.Background(), sched, time.Now().UTC()); err != nil {
			m.logger.Error("failed to enqueue recurring job", slog.String("recurring_id", recurringID), slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("register cron schedule %s: %w", recurringID, err)
	}
	m.cronEntries[recurringID] = entryID
	return nil
}

// Delete removes a one-off job by id. When idOrRecurringID names a recurring
// id instead, it unregisters that schedule's cron entry and deletes every
// job row carrying the recurring id; the stored RecurringSchedule row is
// left in place.
func (m *Manager) Delete(ctx context.Context, idOrRecurringID string) (bool, error) {
	if jobID, err := ids.ParseJobID(idOrRecurringID); err == nil {
		return m.repo.Delete(ctx, jobID)
	}

	m.mu.Lock()
	if entryID, ok := m.cronEntries[idOrRecurringID]; ok {
		m.cron.Remove(entryID)
		delete(m.cronEntries, idOrRecurringID)
	}
	m.mu.Unlock()
	return m.repo.DeleteByRecurringID(ctx, idOrRecurringID)
}

// Trigger fires one execution of recurringID right now, independent of its
// cron schedule.
func (m *Manager) Trigger(ctx context.Context, recurringID string) error {
	sched, err := m.repo.GetSchedule(ctx, recurringID)
	if err != nil {
		return err
	}
	_, err = m.enqueueFromSchedule(ctx, *sched, time.Now().UTC())
	return err
}

func (m *Manager) enqueueFromSchedule(ctx context.Context, sched RecurringSchedule, runAt time.Time) (ids.JobID, error) {
	recurringID := sched.RecurringID
	job := &Job{
		ID:          ids.NewJobID(),
		RecurringID: &recurringID,
		Handler:     sched.Handler,
		Payload:     sched.Payload,
		Lane:        sched.Lane,
		State:       StateEnqueued,
		RunAt:       runAt,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   runAt,
		UpdatedAt:   runAt,
	}
	if err := m.repo.InsertJob(ctx, job); err != nil {
		return ids.JobID{}, err
	}
	return job.ID, nil
}

// Start begins cron dispatch and the worker pool. Call once at boot.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	m.cron.Start()
	for _, lane := range m.lanes {
		for i := 0; i < m.workerCount; i++ {
			m.wg.Add(1)
			go m.runWorker(ctx, lane)
		}
	}
}

// Stop halts cron dispatch and waits for in-flight workers to notice the
// stop signal and return.
func (m *Manager) Stop() {
	m.cron.Stop()
	close(m.stop)
	m.wg.Wait()
	m.mu.Lock()
	m.started = false
	m.mu.Unlock()
}

func (m *Manager) runWorker(ctx context.Context, lane Lane) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.pollOnce(ctx, lane)
		}
	}
}

func (m *Manager) pollOnce(ctx context.Context, lane Lane) {
	token, acquired, err := m.lease.Acquire(ctx, string(lane), m.pollInterval)
	if err != nil {
		m.logger.Error("scheduler lease acquire failed", slog.String("lane", string(lane)), slog.Any("error", err))
		return
	}
	if m.lease != nil && m.lease.client != nil {
		if !acquired {
			// another replica is already polling this lane this tick.
			return
		}
		defer m.lease.Release(ctx, string(lane), token)
	}

	job, err := m.repo.ClaimNext(ctx, []Lane{lane}, m.instanceID, m.invisibility)
	if err != nil {
		m.logger.Error("scheduler claim failed", slog.String("lane", string(lane)), slog.Any("error", err))
		return
	}
	if job == nil {
		return
	}
	m.execute(ctx, job)
}

func (m *Manager) execute(ctx context.Context, job *Job) {
	m.mu.RLock()
	handler, ok := m.handlers[job.Handler]
	m.mu.RUnlock()

	if !ok {
		m.failJob(ctx, job, fmt.Errorf("no handler registered for %q", job.Handler))
		return
	}

	if err := handler(ctx, job.Payload); err != nil {
		m.failJob(ctx, job, err)
		return
	}

	if err := m.repo.MarkSucceeded(ctx, job.ID); err != nil {
		m.logger.Error("failed to mark job succeeded", slog.String("job_id", job.ID.String()), slog.Any("error", err))
	}
}

func (m *Manager) failJob(ctx context.Context, job *Job, cause error) {
	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if err := m.repo.MarkFailed(ctx, job.ID, cause, maxAttempts); err != nil {
		m.logger.Error("failed to mark job failed", slog.String("job_id", job.ID.String()), slog.Any("error", err))
	}
}

// StateCounts is the dashboard's headline view.
func (m *Manager) StateCounts(ctx context.Context) (StateCounts, error) {
	return m.repo.StateCounts(ctx)
}

// History returns the most recently updated jobs, most recent first.
func (m *Manager) History(ctx context.Context, limit int) ([]*Job, error) {
	return m.repo.History(ctx, limit)
}

// Liveness reports whether the worker pool and cron dispatcher are running.
func (m *Manager) Liveness() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}
