package service

import (
	"context"

	"github.com/lthibault/jitterbug/v2"
)

// StartSweeper evicts jobs older than the configured max age every sweep
// interval until ctx is done.
func (s *JobService) StartSweeper(ctx context.Context) {
	ticker := jitterbug.New(s.sweepInterval, &jitterbug.Norm{Stdev: s.sweepInterval / 10, Mean: 0})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			s.Sweep(ctx)
		}
	}()
}

// Sweep evicts jobs older than the configured max age once.
func (s *JobService) Sweep(ctx context.Context) int {
	removed := s.store.Job().Evict(ctx, s.maxAge)
	if removed > 0 {
		s.log.Infow("cleaned up old jobs", "count", removed)
	}
	return removed
}
