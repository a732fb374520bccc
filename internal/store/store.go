package store

import (
	"context"

	"github.com/scribeline/transcriber/pkg/clock"
)

type Store interface {
	Job() Job
	Close() error
}

type DataStore struct {
	job *JobStore
}

func NewStore(c clock.Clock) Store {
	if c == nil {
		c = clock.New()
	}
	return &DataStore{
		job: NewJobStore(c),
	}
}

func (s *DataStore) Job() Job {
	return s.job
}

// Close drops every job record.
func (s *DataStore) Close() error {
	s.job.Evict(context.Background(), 0)
	return nil
}
