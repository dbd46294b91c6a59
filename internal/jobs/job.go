// Package jobs runs background work (audio generation) on a bounded worker
// pool and tracks every run in memory for the API to inspect.
package jobs

import (
	"context"
	"time"
)

// Job is the interface that all job types must implement.
type Job interface {
	// Type returns the job type identifier.
	Type() string

	// Execute runs the job. It should respect context cancellation.
	Execute(ctx context.Context) error

	// Status returns the current status of the job as key-value pairs:
	// progress, current step, items processed. Nil if nothing to report.
	Status() map[string]string
}

// Status represents the current state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether a job in this status will never run again.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Record is the tracked state of one submitted job.
type Record struct {
	ID          string            `json:"id"`
	JobType     string            `json:"job_type"`
	Status      Status            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Progress    map[string]string `json:"progress,omitempty"`
}
