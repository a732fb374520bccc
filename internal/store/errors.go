package store

import (
	"errors"
	"fmt"

	"github.com/scribeline/transcriber/internal/store/model"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrJobFinalized   = errors.New("job is finalized")
)

// InvalidTransitionError is returned when an update asks for a state change
// the job lifecycle does not allow. It matches ErrJobFinalized when the job
// already reached a terminal status.
type InvalidTransitionError struct {
	From model.JobStatus
	To   model.JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid job transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrJobFinalized && e.From.IsTerminal()
}
