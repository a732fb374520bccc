package transcription

import "fmt"

// Kind classifies a transcription failure for logs and metrics.
type Kind string

const (
	KindNotFound                 Kind = "not_found"
	KindNotAFile                 Kind = "not_a_file"
	KindUnsupportedFormat        Kind = "unsupported_format"
	KindMissingCredential        Kind = "missing_credential"
	KindInitializationFailed     Kind = "initialization_failed"
	KindUpstreamProcessingFailed Kind = "upstream_processing_failed"
	KindSafetyBlocked            Kind = "safety_blocked"
	KindRecitationBlocked        Kind = "recitation_blocked"
	KindEmptyResponse            Kind = "empty_response"
	KindExtractionFailed         Kind = "extraction_failed"
	KindTranscriptionFailed      Kind = "transcription_failed"
)

// Error is the only error type returned by Client. Message is user facing.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewErrMissingCredential() *Error {
	return newError(KindMissingCredential, "API key not found. Please set GEMINI_API_KEY in .env file.")
}

func NewErrUpstreamProcessingFailed() *Error {
	return newError(KindUpstreamProcessingFailed, "File processing failed on Google's servers.")
}

func NewErrSafetyBlocked() *Error {
	return newError(KindSafetyBlocked, "The content was blocked by safety filters. The audio may contain sensitive content.")
}

func NewErrRecitationBlocked() *Error {
	return newError(KindRecitationBlocked, "The response was blocked due to potential copyright issues.")
}

func NewErrNoCandidates() *Error {
	return newError(KindEmptyResponse, "The API returned no response. The audio file may be too short, corrupted, or contain no recognizable speech.")
}

func NewErrEmptyResponse() *Error {
	return newError(KindEmptyResponse, "The API returned an empty response. Please try again or use a different audio file.")
}

func NewErrExtractionFailed() *Error {
	return newError(KindExtractionFailed, "Failed to extract transcription from response. The audio file may not contain recognizable speech.")
}

func NewErrTranscriptionFailed(err error) *Error {
	return wrapError(KindTranscriptionFailed, err, "Transcription failed: %v", err)
}
