package service

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/scribeline/transcriber/internal/events"
	"github.com/scribeline/transcriber/internal/store/model"
)

func (s *JobService) pushEvent(ctx context.Context, kind string, job *model.Job) {
	if s.eventWriter == nil || job == nil {
		return
	}

	ev := events.JobEvent{
		JobID:            job.ID,
		Status:           string(job.Status()),
		Filename:         job.Metadata.Filename,
		Language:         job.Metadata.Language,
		ConversationType: job.Metadata.ConversationType,
	}
	if msg, ok := job.FailureMessage(); ok {
		ev.Error = msg
	}
	if result, ok := job.Result(); ok {
		ev.InputTokens = result.InputTokens
		ev.OutputTokens = result.OutputTokens
		cost := result.TotalCost
		ev.TotalCost = &cost
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	if err := s.eventWriter.Write(ctx, kind, bytes.NewBuffer(data)); err != nil {
		zap.S().Named("job_service").Errorw("failed to write event", "error", err, "event_kind", kind)
	}
}
