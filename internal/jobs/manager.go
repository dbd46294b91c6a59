package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the job queue is at capacity.
var ErrQueueFull = errors.New("job queue is full")

// ErrJobNotFound is returned for lookups of unknown job IDs.
var ErrJobNotFound = errors.New("job not found")

// Manager executes submitted jobs on a fixed worker pool and keeps their
// records for inspection. Records live in memory; they do not survive a
// restart.
type Manager struct {
	workers   int
	queueSize int
	logger    *slog.Logger

	mu      sync.RWMutex
	records map[string]*Record
	jobs    map[string]Job
	cancels map[string]context.CancelFunc
	queue   chan string

	wg      sync.WaitGroup
	started bool
}

// ManagerConfig configures a job manager.
type ManagerConfig struct {
	Workers   int // default 2
	QueueSize int // default 64
	Logger    *slog.Logger
}

// NewManager creates a job manager. Call Start before submitting.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		workers:   cfg.Workers,
		queueSize: cfg.QueueSize,
		logger:    logger,
		records:   make(map[string]*Record),
		jobs:      make(map[string]Job),
		cancels:   make(map[string]context.CancelFunc),
		queue:     make(chan string, cfg.QueueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled; Wait blocks until they exit.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx, i)
	}
	m.logger.Info("job manager started", "workers", m.workers)
}

// Wait blocks until all workers have exited.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Submit queues a job for execution and returns its record ID.
func (m *Manager) Submit(job Job, metadata map[string]string) (string, error) {
	rec := &Record{
		ID:        uuid.NewString(),
		JobType:   job.Type(),
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	m.mu.Lock()
	m.records[rec.ID] = rec
	m.jobs[rec.ID] = job
	m.mu.Unlock()

	select {
	case m.queue <- rec.ID:
	default:
		m.mu.Lock()
		delete(m.records, rec.ID)
		delete(m.jobs, rec.ID)
		m.mu.Unlock()
		return "", fmt.Errorf("%w (capacity %d)", ErrQueueFull, m.queueSize)
	}

	m.logger.Info("job queued", "id", rec.ID, "type", rec.JobType)
	return rec.ID, nil
}

// Get returns a copy of a job's record.
func (m *Manager) Get(jobID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return m.snapshot(rec), nil
}

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	Status  Status
	JobType string
	Limit   int // 0 = default 100
}

// List returns job records matching the filter, newest first.
func (m *Manager) List(filter ListFilter) []*Record {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	m.mu.RLock()
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.JobType != "" && rec.JobType != filter.JobType {
			continue
		}
		out = append(out, m.snapshot(rec))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Cancel stops a job. A queued job is marked cancelled and skipped when a
// worker picks it up; a running job has its context cancelled.
func (m *Manager) Cancel(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if rec.Status.Terminal() {
		return fmt.Errorf("job %s already %s", jobID, rec.Status)
	}

	if cancel, running := m.cancels[jobID]; running {
		cancel()
		return nil
	}

	now := time.Now().UTC()
	rec.Status = StatusCancelled
	rec.CompletedAt = &now
	delete(m.jobs, jobID)
	m.logger.Info("job cancelled before start", "id", jobID)
	return nil
}

func (m *Manager) worker(ctx context.Context, id int) {
	defer m.wg.Done()
	logger := m.logger.With("worker", id)

	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-m.queue:
			m.run(ctx, logger, jobID)
		}
	}
}

func (m *Manager) run(ctx context.Context, logger *slog.Logger, jobID string) {
	m.mu.Lock()
	rec, ok := m.records[jobID]
	if !ok || rec.Status != StatusQueued {
		m.mu.Unlock()
		return
	}
	job := m.jobs[jobID]

	jobCtx, cancel := context.WithCancel(ctx)
	now := time.Now().UTC()
	rec.Status = StatusRunning
	rec.StartedAt = &now
	m.cancels[jobID] = cancel
	m.mu.Unlock()

	logger.Info("job started", "id", jobID, "type", job.Type())
	err := job.Execute(jobCtx)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cancels, jobID)
	delete(m.jobs, jobID)

	done := time.Now().UTC()
	rec.CompletedAt = &done
	rec.Progress = job.Status()

	switch {
	case err == nil:
		rec.Status = StatusCompleted
		logger.Info("job completed", "id", jobID, "type", rec.JobType)
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		rec.Status = StatusCancelled
		logger.Info("job cancelled", "id", jobID, "type", rec.JobType)
	default:
		rec.Status = StatusFailed
		rec.Error = err.Error()
		logger.Warn("job failed", "id", jobID, "type", rec.JobType, "error", err)
	}
}

// snapshot copies a record so callers can't mutate manager state.
// Must be called with at least a read lock held.
func (m *Manager) snapshot(rec *Record) *Record {
	out := *rec
	if job, running := m.jobs[rec.ID]; running && rec.Status == StatusRunning {
		out.Progress = job.Status()
	}
	return &out
}
