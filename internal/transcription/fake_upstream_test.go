package transcription_test

import (
	"context"
	"sync"

	"github.com/scribeline/transcriber/internal/transcription"
)

type generateCall struct {
	Model  string
	Prompt string
	File   *transcription.File
}

type fakeUpstream struct {
	mu sync.Mutex

	uploadErr   error
	uploadState transcription.FileState
	// states returned by consecutive GetFile calls; the last one repeats.
	states       []transcription.FileState
	getFileCalls int

	generateErrs  []error
	response      *transcription.Response
	generateCalls []generateCall
}

func (f *fakeUpstream) Upload(_ context.Context, path string) (*transcription.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	state := f.uploadState
	if state == "" {
		state = transcription.FileStateActive
	}
	return &transcription.File{Name: "files/abc", URI: "https://upstream/files/abc", MIMEType: "audio/mpeg", State: state}, nil
}

func (f *fakeUpstream) GetFile(_ context.Context, name string) (*transcription.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.getFileCalls
	if idx >= len(f.states) {
		idx = len(f.states) - 1
	}
	f.getFileCalls++
	return &transcription.File{Name: name, URI: "https://upstream/" + name, MIMEType: "audio/mpeg", State: f.states[idx]}, nil
}

func (f *fakeUpstream) Generate(_ context.Context, model string, prompt string, file *transcription.File) (*transcription.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.generateCalls)
	f.generateCalls = append(f.generateCalls, generateCall{Model: model, Prompt: prompt, File: file})
	if call < len(f.generateErrs) && f.generateErrs[call] != nil {
		return nil, f.generateErrs[call]
	}
	return f.response, nil
}

func textResponse(reason transcription.FinishReason, text string, usage *transcription.Usage) *transcription.Response {
	return &transcription.Response{
		Candidates: []transcription.Candidate{{
			FinishReason: reason,
			Content:      &transcription.Content{Parts: []transcription.Part{{Text: text}}},
		}},
		Usage: usage,
	}
}

type staticPrompts struct{}

func (staticPrompts) Render(conversationType, language string) (string, error) {
	return conversationType + " in " + language, nil
}
