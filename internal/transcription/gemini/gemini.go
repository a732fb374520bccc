// Package gemini adapts the Gemini API client to transcription.Upstream.
package gemini

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"github.com/scribeline/transcriber/internal/transcription"
)

var mimeTypes = map[string]string{
	".m4a": "audio/mp4",
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".aac": "audio/aac",
}

// MIMEType returns the audio MIME type for path, or "" when unknown.
func MIMEType(path string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(path))]
}

type Upstream struct {
	client *genai.Client
}

// NewUpstream matches transcription.UpstreamFactory.
func NewUpstream(ctx context.Context, apiKey string) (transcription.Upstream, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Upstream{client: client}, nil
}

func (u *Upstream) Upload(ctx context.Context, path string) (*transcription.File, error) {
	cfg := &genai.UploadFileConfig{}
	if mime := MIMEType(path); mime != "" {
		cfg.MIMEType = mime
	}
	f, err := u.client.Files.UploadFromPath(ctx, path, cfg)
	if err != nil {
		return nil, toUpstreamError(err)
	}
	return toFile(f), nil
}

func (u *Upstream) GetFile(ctx context.Context, name string) (*transcription.File, error) {
	f, err := u.client.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, toUpstreamError(err)
	}
	return toFile(f), nil
}

func (u *Upstream) Generate(ctx context.Context, model string, prompt string, file *transcription.File) (*transcription.Response, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromURI(file.URI, file.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := u.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return nil, toUpstreamError(err)
	}
	return toResponse(resp), nil
}

func toFile(f *genai.File) *transcription.File {
	return &transcription.File{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: f.MIMEType,
		State:    transcription.FileState(f.State),
	}
}

func toResponse(resp *genai.GenerateContentResponse) *transcription.Response {
	out := &transcription.Response{}
	if resp == nil {
		return out
	}

	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		candidate := transcription.Candidate{FinishReason: transcription.FinishReason(c.FinishReason)}
		if c.Content != nil {
			content := &transcription.Content{}
			for _, p := range c.Content.Parts {
				if p == nil {
					continue
				}
				content.Parts = append(content.Parts, transcription.Part{Text: p.Text, Thought: p.Thought})
			}
			candidate.Content = content
		}
		out.Candidates = append(out.Candidates, candidate)
	}

	if u := resp.UsageMetadata; u != nil {
		out.Usage = &transcription.Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}

	return out
}

func toUpstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &transcription.UpstreamError{Code: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &transcription.UpstreamError{Code: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return err
}
