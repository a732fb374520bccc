package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scribeline/transcriber/internal/store/model"
	"github.com/scribeline/transcriber/pkg/clock"
	"github.com/scribeline/transcriber/pkg/metrics"
)

// Job interface for job-related operations
type Job interface {
	Create(ctx context.Context) *model.Job
	Get(ctx context.Context, id string) (*model.Job, error)
	Update(ctx context.Context, id string, update model.JobUpdate) (*model.Job, error)
	Evict(ctx context.Context, maxAge time.Duration) int
	Count() int
}

// JobStore keeps jobs in memory. Readers always get copies.
type JobStore struct {
	mu    sync.RWMutex
	jobs  map[string]*model.Job
	clock clock.Clock
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(c clock.Clock) *JobStore {
	return &JobStore{
		jobs:  make(map[string]*model.Job),
		clock: c,
	}
}

func (s *JobStore) Create(_ context.Context) *model.Job {
	job := &model.Job{
		ID:        uuid.NewString(),
		State:     model.Pending{},
		Stage:     string(model.JobStatusPending),
		Progress:  0,
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	count := len(s.jobs)
	s.mu.Unlock()

	metrics.UpdateJobsStoredMetric(count)

	cp := *job
	return &cp
}

func (s *JobStore) Get(_ context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *job
	return &cp, nil
}

// Update applies every supplied field or none of them. Stage and progress may
// still change on a terminal job, its state may not.
func (s *JobStore) Update(_ context.Context, id string, update model.JobUpdate) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	if update.State != nil {
		from, to := job.Status(), update.State.Status()
		if !model.CanTransition(from, to) {
			return nil, &InvalidTransitionError{From: from, To: to}
		}
	}

	if update.State != nil {
		job.State = update.State
	}
	if update.Stage != nil {
		job.Stage = *update.Stage
	}
	if update.Progress != nil {
		job.Progress = *update.Progress
	}
	if update.Metadata != nil {
		job.Metadata = *update.Metadata
	}

	cp := *job
	return &cp, nil
}

// Evict removes jobs older than maxAge and returns how many were removed.
// A non-positive maxAge removes every job.
func (s *JobStore) Evict(_ context.Context, maxAge time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for id, job := range s.jobs {
		if maxAge <= 0 || now.Sub(job.CreatedAt) > maxAge {
			delete(s.jobs, id)
			removed++
		}
	}
	count := len(s.jobs)
	s.mu.Unlock()

	metrics.UpdateJobsStoredMetric(count)
	return removed
}

func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
