package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/scribeline/transcriber/pkg/metrics"
	"github.com/scribeline/transcriber/pkg/poll"
)

const defaultPollInterval = 2 * time.Second

// PromptRenderer builds the generation prompt for a conversation type.
type PromptRenderer interface {
	Render(conversationType, language string) (string, error)
}

type Config struct {
	APIKey              string
	Model               string
	FallbackModel       string
	SupportedExtensions []string
	PollInterval        time.Duration
	Pricing             Pricing
	Prompts             PromptRenderer
}

type ClientOption func(*Client)

// WithPollBackoff replaces the fixed PollInterval wait between file state checks.
func WithPollBackoff(backoff func() retry.Backoff) ClientOption {
	return func(c *Client) {
		c.pollBackoff = backoff
	}
}

// Client transcribes local audio files through an Upstream. It is safe for
// concurrent use; the upstream is constructed once, on first use.
type Client struct {
	cfg         Config
	factory     UpstreamFactory
	pollBackoff func() retry.Backoff

	mu       sync.Mutex
	upstream Upstream
	log      *zap.SugaredLogger
}

func NewClient(cfg Config, factory UpstreamFactory, opts ...ClientOption) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	exts := make([]string, 0, len(cfg.SupportedExtensions))
	for _, ext := range cfg.SupportedExtensions {
		exts = append(exts, strings.ToLower(ext))
	}
	cfg.SupportedExtensions = exts

	c := &Client{
		cfg:     cfg,
		factory: factory,
		log:     zap.S().Named("transcription_client"),
	}
	c.pollBackoff = func() retry.Backoff { return poll.Fixed(c.cfg.PollInterval) }

	for _, o := range opts {
		o(c)
	}

	return c
}

// Initialize constructs the upstream. Calling it again after success is a no-op.
func (c *Client) Initialize(ctx context.Context) error {
	_, err := c.getUpstream(ctx)
	return err
}

func (c *Client) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upstream != nil
}

func (c *Client) getUpstream(ctx context.Context) (Upstream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.upstream != nil {
		return c.upstream, nil
	}

	if c.cfg.APIKey == "" {
		c.log.Error("no api key provided")
		return nil, NewErrMissingCredential()
	}

	c.log.Info("initializing upstream client")
	upstream, err := c.factory(ctx, c.cfg.APIKey)
	if err != nil {
		c.log.Errorw("failed to initialize upstream client", "error", err)
		return nil, wrapError(KindInitializationFailed, err, "Failed to initialize Gemini API: %v", err)
	}
	c.upstream = upstream
	c.log.Infow("upstream client initialized", "model", c.cfg.Model)

	return c.upstream, nil
}

// Validate checks path before anything is sent upstream.
func (c *Client) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		c.log.Errorw("file not found", "path", path)
		return wrapError(KindNotFound, err, "File not found: %s", path)
	}
	if !info.Mode().IsRegular() {
		c.log.Errorw("not a file", "path", path)
		return newError(KindNotAFile, "Not a file: %s", path)
	}

	ext := filepath.Ext(path)
	if !c.isSupported(ext) {
		c.log.Errorw("unsupported file format", "extension", ext)
		return newError(KindUnsupportedFormat, "Unsupported file format: %s. Supported formats: %s",
			ext, strings.Join(c.cfg.SupportedExtensions, ", "))
	}

	return nil
}

func (c *Client) isSupported(ext string) bool {
	return funk.ContainsString(c.cfg.SupportedExtensions, strings.ToLower(ext))
}

// Transcribe uploads the file at path, waits for the upstream to process it
// and asks the model for a transcription in language shaped by
// conversationType.
func (c *Client) Transcribe(ctx context.Context, path, language, conversationType string) (Result, error) {
	result, err := c.transcribe(ctx, path, language, conversationType)
	if err != nil {
		var tErr *Error
		if !errors.As(err, &tErr) {
			c.log.Errorw("transcription failed", "error", err)
			tErr = NewErrTranscriptionFailed(err)
		}
		metrics.IncreaseTranscriptionErrorsMetric(string(tErr.Kind))
		return Result{}, tErr
	}
	return result, nil
}

func (c *Client) transcribe(ctx context.Context, path, language, conversationType string) (Result, error) {
	upstream, err := c.getUpstream(ctx)
	if err != nil {
		return Result{}, err
	}

	if err := c.Validate(path); err != nil {
		return Result{}, err
	}

	log := c.log.With("file", filepath.Base(path))
	log.Infow("starting transcription", "language", language, "conversation_type", conversationType)

	file, err := upstream.Upload(ctx, path)
	if err != nil {
		return Result{}, err
	}
	log.Debugw("file uploaded", "name", file.Name)

	file, err = c.waitForFile(ctx, upstream, file)
	if err != nil {
		return Result{}, err
	}
	log.Debugw("file ready", "state", file.State)

	prompt, err := c.cfg.Prompts.Render(conversationType, language)
	if err != nil {
		return Result{}, err
	}

	log.Info("generating transcription")
	resp, err := c.generate(ctx, upstream, prompt, file)
	if err != nil {
		return Result{}, err
	}

	text, err := c.extractText(resp)
	if err != nil {
		return Result{}, err
	}

	usage := Usage{}
	if resp.Usage != nil {
		usage = *resp.Usage
	}
	result := NewResult(text, usage, c.cfg.Pricing)
	metrics.RecordUsage(result.InputTokens, result.OutputTokens, result.TotalCost)

	log.Infof("transcription successful: %s", result.FormattedStats())
	return result, nil
}

// waitForFile polls the file state while the upstream reports PROCESSING. The
// state returned by Upload is checked first without another request.
func (c *Client) waitForFile(ctx context.Context, upstream Upstream, file *File) (*File, error) {
	current := file
	first := true
	err := poll.Until(ctx, c.pollBackoff(), func(ctx context.Context) (bool, error) {
		if !first {
			f, err := upstream.GetFile(ctx, current.Name)
			if err != nil {
				return false, err
			}
			current = f
		}
		first = false

		if current.State == FileStateProcessing {
			c.log.Debugw("file still processing", "name", current.Name)
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if current.State == FileStateFailed {
		return nil, NewErrUpstreamProcessingFailed()
	}
	return current, nil
}

// generate calls the primary model and, only if it answers 503, the fallback
// model once.
func (c *Client) generate(ctx context.Context, upstream Upstream, prompt string, file *File) (*Response, error) {
	resp, err := upstream.Generate(ctx, c.cfg.Model, prompt, file)
	if err == nil {
		return resp, nil
	}
	if !IsOverloaded(err) || c.cfg.FallbackModel == "" {
		return nil, err
	}

	c.log.Warnw("primary model overloaded, falling back",
		"model", c.cfg.Model, "fallback_model", c.cfg.FallbackModel)
	metrics.IncreaseModelFallbacksMetric()

	return upstream.Generate(ctx, c.cfg.FallbackModel, prompt, file)
}

func (c *Client) extractText(resp *Response) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		c.log.Error("no candidates in response")
		return "", NewErrNoCandidates()
	}

	candidate := resp.Candidates[0]
	c.log.Debugw("response finished", "finish_reason", candidate.FinishReason)

	switch candidate.FinishReason {
	case FinishReasonSafety:
		c.log.Warn("content blocked by safety filters")
		return "", NewErrSafetyBlocked()
	case FinishReasonRecitation:
		c.log.Warn("response blocked due to recitation")
		return "", NewErrRecitationBlocked()
	case FinishReasonMaxTokens:
		c.log.Warn("response truncated due to max tokens")
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		c.log.Error("response has no content parts")
		return "", NewErrEmptyResponse()
	}

	text := resp.Text()
	if text == "" {
		c.log.Error("failed to extract text from response")
		return "", NewErrExtractionFailed()
	}
	return text, nil
}
