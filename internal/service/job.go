package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scribeline/transcriber/internal/events"
	"github.com/scribeline/transcriber/internal/store"
	"github.com/scribeline/transcriber/internal/store/model"
	"github.com/scribeline/transcriber/internal/transcription"
	"github.com/scribeline/transcriber/internal/worker"
	"github.com/scribeline/transcriber/pkg/metrics"
)

const (
	StageProcessing   = "processing"
	StageInitializing = "initializing"
	StageTranscribing = "transcribing"
	StageCompleted    = "completed"
	StageFailed       = "failed"

	PercentProcessing   = 10
	PercentInitializing = 20
	PercentTranscribing = 30
	PercentCompleted    = 100
	PercentFailed       = 0

	defaultMaxAge        = 24 * time.Hour
	defaultSweepInterval = time.Hour
)

// Transcriber is the part of transcription.Client the runner needs.
type Transcriber interface {
	Initialized() bool
	Initialize(ctx context.Context) error
	Transcribe(ctx context.Context, path, language, conversationType string) (transcription.Result, error)
}

type EventWriter interface {
	Write(ctx context.Context, kind string, body io.Reader) error
}

type JobServiceOption func(*JobService)

func WithEventWriter(w EventWriter) JobServiceOption {
	return func(s *JobService) {
		s.eventWriter = w
	}
}

// WithMaxAge sets how long finished and abandoned jobs are kept.
func WithMaxAge(d time.Duration) JobServiceOption {
	return func(s *JobService) {
		s.maxAge = d
	}
}

func WithSweepInterval(d time.Duration) JobServiceOption {
	return func(s *JobService) {
		s.sweepInterval = d
	}
}

// JobService runs transcription jobs in the background and keeps their state
// in the store.
type JobService struct {
	store         store.Store
	client        Transcriber
	pool          *worker.Pool
	eventWriter   EventWriter
	maxAge        time.Duration
	sweepInterval time.Duration

	wg  sync.WaitGroup
	log *zap.SugaredLogger
}

func NewJobService(s store.Store, client Transcriber, pool *worker.Pool, opts ...JobServiceOption) *JobService {
	srv := &JobService{
		store:         s,
		client:        client,
		pool:          pool,
		maxAge:        defaultMaxAge,
		sweepInterval: defaultSweepInterval,
		log:           zap.S().Named("job_service"),
	}

	for _, o := range opts {
		o(srv)
	}

	return srv
}

func (s *JobService) CreateJob(ctx context.Context) *model.Job {
	job := s.store.Job().Create(ctx)
	s.log.Infow("job created", "job_id", job.ID)
	metrics.IncreaseJobsTotalMetric(string(model.JobStatusPending))
	s.pushEvent(ctx, events.JobCreatedKind, job)
	return job
}

func (s *JobService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, err
	}
	return job, nil
}

// Schedule starts Run in the background and returns at once. The run is not
// bound to the caller's context.
func (s *JobService) Schedule(jobID, filePath, language, conversationType string, notifier Notifier) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(context.Background(), jobID, filePath, language, conversationType, notifier)
	}()
}

// Run drives one job to a terminal state. It never returns an error or panics:
// every failure ends in the Failed state. The file at filePath is removed
// when Run returns.
func (s *JobService) Run(ctx context.Context, jobID, filePath, language, conversationType string, notifier Notifier) {
	log := s.log.With("job_id", jobID)

	if _, err := s.store.Job().Get(ctx, jobID); err != nil {
		log.Errorw("job not found", "error", err)
		s.removeFile(filePath)
		return
	}

	metrics.IncreaseJobsRunningMetric()
	defer metrics.DecreaseJobsRunningMetric()

	var cleanup sync.Once
	defer cleanup.Do(func() { s.removeFile(filePath) })

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("job runner panicked", "panic", r)
			s.fail(ctx, jobID, notifier, fmt.Errorf("unexpected error: %v", r))
		}
	}()

	result, err := s.run(ctx, jobID, filePath, language, conversationType, notifier)
	if err != nil {
		log.Errorw("job failed", "error", err)
		s.fail(ctx, jobID, notifier, err)
		return
	}

	job, err := s.store.Job().Update(ctx, jobID, *model.NewJobUpdate().WithState(model.Completed{Result: result}))
	if err != nil {
		log.Errorw("failed to store job result", "error", err)
		return
	}
	s.checkpoint(ctx, jobID, notifier, StageCompleted, PercentCompleted)

	metrics.IncreaseJobsTotalMetric(string(model.JobStatusCompleted))
	s.pushEvent(ctx, events.JobCompletedKind, job)
	log.Infow("job completed", "stats", result.FormattedStats())
}

func (s *JobService) run(ctx context.Context, jobID, filePath, language, conversationType string, notifier Notifier) (transcription.Result, error) {
	_, err := s.store.Job().Update(ctx, jobID, *model.NewJobUpdate().
		WithState(model.Processing{}).
		WithMetadata(model.JobMetadata{
			Filename:         filepath.Base(filePath),
			Language:         language,
			ConversationType: conversationType,
		}))
	if err != nil {
		return transcription.Result{}, err
	}
	s.checkpoint(ctx, jobID, notifier, StageProcessing, PercentProcessing)

	if !s.client.Initialized() {
		s.checkpoint(ctx, jobID, notifier, StageInitializing, PercentInitializing)
		_, err := worker.Submit(ctx, s.pool, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.client.Initialize(ctx)
		}).Await(ctx)
		if err != nil {
			return transcription.Result{}, err
		}
	}

	s.checkpoint(ctx, jobID, notifier, StageTranscribing, PercentTranscribing)
	return worker.Submit(ctx, s.pool, func(ctx context.Context) (transcription.Result, error) {
		return s.client.Transcribe(ctx, filePath, language, conversationType)
	}).Await(ctx)
}

// checkpoint records stage and percent, then tells the notifier.
func (s *JobService) checkpoint(ctx context.Context, jobID string, notifier Notifier, stage string, percent int) {
	if _, err := s.store.Job().Update(ctx, jobID, *model.NewJobUpdate().WithStage(stage).WithProgress(percent)); err != nil {
		s.log.Warnw("failed to record checkpoint", "job_id", jobID, "stage", stage, "error", err)
	}
	if notifier != nil {
		notifier.Notify(ctx, jobID, stage, percent)
	}
}

// fail stores the failure and emits the failed checkpoint. A job that already
// reached a terminal state is left untouched.
func (s *JobService) fail(ctx context.Context, jobID string, notifier Notifier, cause error) {
	job, err := s.store.Job().Update(ctx, jobID, *model.NewJobUpdate().WithState(model.Failed{Error: cause.Error()}))
	if err != nil {
		s.log.Warnw("failed to store job failure", "job_id", jobID, "error", err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("notifier panicked on failure", "job_id", jobID, "panic", r)
		}
	}()
	s.checkpoint(ctx, jobID, notifier, StageFailed, PercentFailed)

	metrics.IncreaseJobsTotalMetric(string(model.JobStatusFailed))
	s.pushEvent(ctx, events.JobFailedKind, job)
}

func (s *JobService) removeFile(path string) {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warnw("failed to remove uploaded file", "path", path, "error", err)
		}
		return
	}
	s.log.Debugw("removed uploaded file", "path", path)
}

// Shutdown waits for running jobs, bounded by ctx, and then drops every job.
func (s *JobService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		s.log.Warnw("shutdown before all jobs finished", "error", err)
	}

	removed := s.store.Job().Evict(ctx, 0)
	s.log.Infow("jobs evicted on shutdown", "count", removed)
	return err
}
