package model

import (
	"time"

	"github.com/scribeline/transcriber/internal/transcription"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusUploading  JobStatus = "uploading"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobState is the lifecycle state of a job. Only Completed carries a result
// and only Failed carries an error message.
type JobState interface {
	Status() JobStatus
	isJobState()
}

type Pending struct{}

type Uploading struct{}

type Processing struct{}

type Completed struct {
	Result transcription.Result
}

type Failed struct {
	Error string
}

func (Pending) Status() JobStatus    { return JobStatusPending }
func (Uploading) Status() JobStatus  { return JobStatusUploading }
func (Processing) Status() JobStatus { return JobStatusProcessing }
func (Completed) Status() JobStatus  { return JobStatusCompleted }
func (Failed) Status() JobStatus     { return JobStatusFailed }

func (Pending) isJobState()    {}
func (Uploading) isJobState()  {}
func (Processing) isJobState() {}
func (Completed) isJobState()  {}
func (Failed) isJobState()     {}

var transitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusUploading, JobStatusProcessing, JobStatusFailed},
	JobStatusUploading:  {JobStatusProcessing, JobStatusFailed},
	JobStatusProcessing: {JobStatusProcessing, JobStatusCompleted, JobStatusFailed},
}

// CanTransition reports whether a job in status from may move to status to.
// Terminal statuses never move.
func CanTransition(from, to JobStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type JobMetadata struct {
	Filename         string
	Language         string
	ConversationType string
}

type Job struct {
	ID        string
	State     JobState
	Stage     string
	Progress  int
	Metadata  JobMetadata
	CreatedAt time.Time
}

func (j Job) Status() JobStatus {
	return j.State.Status()
}

func (j Job) IsTerminal() bool {
	return j.Status().IsTerminal()
}

func (j Job) Result() (transcription.Result, bool) {
	completed, ok := j.State.(Completed)
	return completed.Result, ok
}

func (j Job) FailureMessage() (string, bool) {
	failed, ok := j.State.(Failed)
	return failed.Error, ok
}

// JobUpdate lists the fields to change on a job. Nil fields are left as is.
type JobUpdate struct {
	State    JobState
	Stage    *string
	Progress *int
	Metadata *JobMetadata
}

func NewJobUpdate() *JobUpdate {
	return &JobUpdate{}
}

func (u *JobUpdate) WithState(state JobState) *JobUpdate {
	u.State = state
	return u
}

func (u *JobUpdate) WithStage(stage string) *JobUpdate {
	u.Stage = &stage
	return u
}

func (u *JobUpdate) WithProgress(progress int) *JobUpdate {
	u.Progress = &progress
	return u
}

func (u *JobUpdate) WithMetadata(metadata JobMetadata) *JobUpdate {
	u.Metadata = &metadata
	return u
}
