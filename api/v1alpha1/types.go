// Package v1alpha1 holds the wire types of the transcription HTTP API.
package v1alpha1

// JobStatus is the lifecycle status reported for a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusUploading  JobStatus = "uploading"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

func StringToJobStatus(s string) JobStatus {
	switch s {
	case string(JobStatusUploading):
		return JobStatusUploading
	case string(JobStatusProcessing):
		return JobStatusProcessing
	case string(JobStatusCompleted):
		return JobStatusCompleted
	case string(JobStatusFailed):
		return JobStatusFailed
	default:
		return JobStatusPending
	}
}

type Health struct {
	Status string `json:"status"`
}

type Config struct {
	Languages           []string `json:"languages"`
	ConversationTypes   []string `json:"conversation_types"`
	SupportedExtensions []string `json:"supported_extensions"`
	MaxFileSize         int64    `json:"max_file_size"`
}

type Upload struct {
	JobID string `json:"job_id"`
}

type TranscriptionResult struct {
	Text         string  `json:"text"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// Job is the polled view of a job. Optional fields are null until known.
type Job struct {
	ID               string               `json:"id"`
	Status           JobStatus            `json:"status"`
	Progress         int                  `json:"progress"`
	Stage            string               `json:"stage"`
	Error            *string              `json:"error"`
	Filename         *string              `json:"filename"`
	Language         *string              `json:"language"`
	ConversationType *string              `json:"conversation_type"`
	Result           *TranscriptionResult `json:"result"`
}

type Error struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
