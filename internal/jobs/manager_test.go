package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeJob is a controllable job for exercising the manager.
type fakeJob struct {
	typ     string
	execute func(ctx context.Context) error
	ran     atomic.Bool
}

func (f *fakeJob) Type() string {
	if f.typ == "" {
		return "fake"
	}
	return f.typ
}

func (f *fakeJob) Execute(ctx context.Context) error {
	f.ran.Store(true)
	if f.execute != nil {
		return f.execute(ctx)
	}
	return nil
}

func (f *fakeJob) Status() map[string]string {
	return map[string]string{"items": "1"}
}

func waitForStatus(t *testing.T, m *Manager, jobID string, want Status) *Record {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := m.Get(jobID)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", jobID, err)
		}
		if rec.Status == want {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	rec, _ := m.Get(jobID)
	t.Fatalf("job %s never reached %s, last status %s", jobID, want, rec.Status)
	return nil
}

func TestManagerRunsJobToCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ManagerConfig{Workers: 1})
	m.Start(ctx)

	job := &fakeJob{}
	id, err := m.Submit(job, map[string]string{"book_id": "b1"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rec := waitForStatus(t, m, id, StatusCompleted)
	if !job.ran.Load() {
		t.Fatal("job never executed")
	}
	if rec.StartedAt == nil || rec.CompletedAt == nil {
		t.Fatalf("expected timestamps to be set: %#v", rec)
	}
	if rec.Metadata["book_id"] != "b1" {
		t.Fatalf("metadata not preserved: %#v", rec.Metadata)
	}
	if rec.Progress["items"] != "1" {
		t.Fatalf("final progress not captured: %#v", rec.Progress)
	}
}

func TestManagerRecordsFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ManagerConfig{Workers: 1})
	m.Start(ctx)

	job := &fakeJob{execute: func(ctx context.Context) error {
		return errors.New("synthesis exploded")
	}}
	id, err := m.Submit(job, nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rec := waitForStatus(t, m, id, StatusFailed)
	if rec.Error != "synthesis exploded" {
		t.Fatalf("unexpected error message: %q", rec.Error)
	}
}

func TestManagerCancelQueuedJob(t *testing.T) {
	// No Start: the job stays queued forever, so Cancel must settle it.
	m := NewManager(ManagerConfig{Workers: 1})

	id, err := m.Submit(&fakeJob{}, nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := m.Cancel(id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	rec, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", rec.Status)
	}
	if err := m.Cancel(id); err == nil {
		t.Fatal("expected error cancelling an already-cancelled job")
	}
}

func TestManagerCancelRunningJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ManagerConfig{Workers: 1})
	m.Start(ctx)

	started := make(chan struct{})
	job := &fakeJob{execute: func(jobCtx context.Context) error {
		close(started)
		<-jobCtx.Done()
		return jobCtx.Err()
	}}
	id, err := m.Submit(job, nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	if err := m.Cancel(id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	waitForStatus(t, m, id, StatusCancelled)
}

func TestManagerCancelUnknownJob(t *testing.T) {
	m := NewManager(ManagerConfig{})
	if err := m.Cancel("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestManagerListFilters(t *testing.T) {
	m := NewManager(ManagerConfig{Workers: 1, QueueSize: 8})

	aID, err := m.Submit(&fakeJob{typ: "paragraph_audio"}, nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond) // distinct CreatedAt for ordering
	bID, err := m.Submit(&fakeJob{typ: "page_audio"}, nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	all := m.List(ListFilter{})
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if all[0].ID != bID || all[1].ID != aID {
		t.Fatalf("expected newest first, got %s then %s", all[0].ID, all[1].ID)
	}

	byType := m.List(ListFilter{JobType: "page_audio"})
	if len(byType) != 1 || byType[0].ID != bID {
		t.Fatalf("type filter failed: %#v", byType)
	}

	if err := m.Cancel(aID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	byStatus := m.List(ListFilter{Status: StatusQueued})
	if len(byStatus) != 1 || byStatus[0].ID != bID {
		t.Fatalf("status filter failed: %#v", byStatus)
	}

	limited := m.List(ListFilter{Limit: 1})
	if len(limited) != 1 || limited[0].ID != bID {
		t.Fatalf("limit failed: %#v", limited)
	}
}

func TestManagerQueueFull(t *testing.T) {
	// No workers draining: capacity 1, second submit must be rejected.
	m := NewManager(ManagerConfig{Workers: 1, QueueSize: 1})

	if _, err := m.Submit(&fakeJob{}, nil); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	id, err := m.Submit(&fakeJob{}, nil)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty ID on rejection, got %q", id)
	}
	if len(m.List(ListFilter{})) != 1 {
		t.Fatal("rejected submission leaked a record")
	}
}
