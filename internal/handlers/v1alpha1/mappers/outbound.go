package mappers

import (
	api "github.com/scribeline/transcriber/api/v1alpha1"
	"github.com/scribeline/transcriber/internal/store/model"
	"github.com/scribeline/transcriber/internal/transcription"
)

func JobToApi(job model.Job) api.Job {
	out := api.Job{
		ID:               job.ID,
		Status:           api.StringToJobStatus(string(job.Status())),
		Progress:         job.Progress,
		Stage:            job.Stage,
		Filename:         optional(job.Metadata.Filename),
		Language:         optional(job.Metadata.Language),
		ConversationType: optional(job.Metadata.ConversationType),
	}

	if msg, ok := job.FailureMessage(); ok {
		out.Error = &msg
	}
	if result, ok := job.Result(); ok {
		r := ResultToApi(result)
		out.Result = &r
	}

	return out
}

func ResultToApi(r transcription.Result) api.TranscriptionResult {
	return api.TranscriptionResult{
		Text:         r.Text,
		InputTokens:  r.InputTokens,
		OutputTokens: r.OutputTokens,
		TotalTokens:  r.TotalTokens,
		InputCost:    r.InputCost,
		OutputCost:   r.OutputCost,
		TotalCost:    r.TotalCost,
	}
}

func ConfigToApi(languages, conversationTypes, extensions []string, maxFileSize int64) api.Config {
	return api.Config{
		Languages:           nonNil(languages),
		ConversationTypes:   nonNil(conversationTypes),
		SupportedExtensions: nonNil(extensions),
		MaxFileSize:         maxFileSize,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
