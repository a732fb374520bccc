package fanout

import (
	"encoding/json"

	"github.com/scribeline/transcriber/internal/store/model"
	"github.com/scribeline/transcriber/internal/transcription"
)

// EventType classifies messages pushed to job subscribers.
type EventType string

const (
	EventTypeProgress  EventType = "progress"
	EventTypeCompleted EventType = "completed"
	EventTypeError     EventType = "error"
)

const unknownError = "Unknown error"

// Event is one message for the subscribers of a job. Only the fields that
// belong to its type are serialized.
type Event struct {
	Type    EventType
	Stage   string
	Percent int
	Result  transcription.Result
	Message string
}

func ProgressEvent(stage string, percent int) Event {
	return Event{Type: EventTypeProgress, Stage: stage, Percent: percent}
}

func CompletedEvent(result transcription.Result) Event {
	return Event{Type: EventTypeCompleted, Result: result}
}

func ErrorEvent(message string) Event {
	return Event{Type: EventTypeError, Message: message}
}

// SnapshotEvent describes the current state of job to a subscriber that
// attaches after the job started.
func SnapshotEvent(job model.Job) Event {
	if result, ok := job.Result(); ok {
		return CompletedEvent(result)
	}
	if job.Status() == model.JobStatusFailed {
		msg, _ := job.FailureMessage()
		if msg == "" {
			msg = unknownError
		}
		return ErrorEvent(msg)
	}
	return ProgressEvent(job.Stage, job.Progress)
}

type progressMessage struct {
	Type    EventType `json:"type"`
	Stage   string    `json:"stage"`
	Percent int       `json:"percent"`
}

type completedMessage struct {
	Type   EventType            `json:"type"`
	Result transcription.Result `json:"result"`
}

type errorMessage struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventTypeCompleted:
		return json.Marshal(completedMessage{Type: e.Type, Result: e.Result})
	case EventTypeError:
		return json.Marshal(errorMessage{Type: e.Type, Message: e.Message})
	default:
		return json.Marshal(progressMessage{Type: EventTypeProgress, Stage: e.Stage, Percent: e.Percent})
	}
}
