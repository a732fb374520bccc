package transcription

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type FileState string

const (
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
)

type FinishReason string

const (
	FinishReasonStop       FinishReason = "STOP"
	FinishReasonMaxTokens  FinishReason = "MAX_TOKENS"
	FinishReasonSafety     FinishReason = "SAFETY"
	FinishReasonRecitation FinishReason = "RECITATION"
)

// File is an audio file as known to the upstream service.
type File struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

type Part struct {
	Text    string
	Thought bool
}

type Content struct {
	Parts []Part
}

type Candidate struct {
	FinishReason FinishReason
	Content      *Content
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Response struct {
	Candidates []Candidate
	// Usage is nil when the upstream did not report token counts.
	Usage *Usage
}

// Text concatenates the non-thought text parts of the first candidate.
func (r *Response) Text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	text := ""
	for _, part := range r.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		text += part.Text
	}
	return text
}

// Upstream is the generative model service used by Client.
type Upstream interface {
	Upload(ctx context.Context, path string) (*File, error)
	GetFile(ctx context.Context, name string) (*File, error)
	Generate(ctx context.Context, model string, prompt string, file *File) (*Response, error)
}

// UpstreamFactory builds an Upstream for the given API key.
type UpstreamFactory func(ctx context.Context, apiKey string) (Upstream, error)

// UpstreamError is a failed upstream call carrying the HTTP status code.
type UpstreamError struct {
	Code    int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsOverloaded reports whether err is an upstream 503.
func IsOverloaded(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.Code == http.StatusServiceUnavailable
}
