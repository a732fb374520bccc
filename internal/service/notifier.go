package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/scribeline/transcriber/internal/fanout"
	"github.com/scribeline/transcriber/internal/store"
)

// Notifier is told about every checkpoint a job runner reaches.
type Notifier interface {
	Notify(ctx context.Context, jobID, stage string, percent int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, jobID, stage string, percent int)

func (f NotifierFunc) Notify(ctx context.Context, jobID, stage string, percent int) {
	f(ctx, jobID, stage, percent)
}

// FanoutNotifier turns checkpoints into events for the job's subscribers,
// reading the stored job so terminal events carry the result or the error.
type FanoutNotifier struct {
	store store.Store
	hub   *fanout.Hub
}

func NewFanoutNotifier(s store.Store, hub *fanout.Hub) *FanoutNotifier {
	return &FanoutNotifier{store: s, hub: hub}
}

func (n *FanoutNotifier) Notify(ctx context.Context, jobID, stage string, percent int) {
	job, err := n.store.Job().Get(ctx, jobID)
	if err != nil {
		zap.S().Named("fanout_notifier").Debugw("job gone, dropping checkpoint", "job_id", jobID, "stage", stage)
		return
	}

	event := fanout.ProgressEvent(stage, percent)
	switch stage {
	case StageFailed:
		if msg, ok := job.FailureMessage(); ok && msg != "" {
			event = fanout.ErrorEvent(msg)
		}
	case StageCompleted:
		if result, ok := job.Result(); ok {
			event = fanout.CompletedEvent(result)
		}
	}

	n.hub.Publish(ctx, jobID, event)
}
