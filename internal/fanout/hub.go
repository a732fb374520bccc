// Package fanout delivers job progress to every live subscriber of a job.
package fanout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/scribeline/transcriber/pkg/metrics"
)

// Channel is one subscriber connection.
type Channel interface {
	Send(ctx context.Context, event Event) error
	Close() error
}

// Hub keeps the subscribers of each job. Job ids are not checked against the
// store: publishing to a job nobody watches does nothing.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[Channel]struct{}
	log         *zap.SugaredLogger
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[Channel]struct{}),
		log:         zap.S().Named("fanout"),
	}
}

func (h *Hub) Subscribe(_ context.Context, ch Channel, jobID string) {
	h.mu.Lock()
	set, ok := h.subscribers[jobID]
	if !ok {
		set = make(map[Channel]struct{})
		h.subscribers[jobID] = set
	}
	set[ch] = struct{}{}
	total := h.totalLocked()
	h.mu.Unlock()

	metrics.UpdateSubscribersMetric(total)
	h.log.Debugw("subscriber attached", "job_id", jobID)
}

// Unsubscribe is a no-op for a channel that is not subscribed.
func (h *Hub) Unsubscribe(ch Channel, jobID string) {
	h.mu.Lock()
	h.removeLocked(ch, jobID)
	total := h.totalLocked()
	h.mu.Unlock()

	metrics.UpdateSubscribersMetric(total)
	h.log.Debugw("subscriber detached", "job_id", jobID)
}

// Publish sends event to every subscriber of jobID. Sends run concurrently
// and outside the lock; a subscriber whose send fails is dropped without
// affecting the others.
func (h *Hub) Publish(ctx context.Context, jobID string, event Event) {
	h.mu.Lock()
	set := h.subscribers[jobID]
	targets := make([]Channel, 0, len(set))
	for ch := range set {
		targets = append(targets, ch)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed []Channel
	)
	for _, ch := range targets {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			if err := ch.Send(ctx, event); err != nil {
				h.log.Warnw("failed to deliver event", "job_id", jobID, "type", event.Type, "error", err)
				metrics.IncreaseDeliveryFailuresMetric()
				failMu.Lock()
				failed = append(failed, ch)
				failMu.Unlock()
			}
		}(ch)
	}
	wg.Wait()

	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	for _, ch := range failed {
		h.removeLocked(ch, jobID)
	}
	total := h.totalLocked()
	h.mu.Unlock()

	metrics.UpdateSubscribersMetric(total)
}

// Count returns the number of subscribers of jobID.
func (h *Hub) Count(jobID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[jobID])
}

func (h *Hub) removeLocked(ch Channel, jobID string) {
	set, ok := h.subscribers[jobID]
	if !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.subscribers, jobID)
	}
}

func (h *Hub) totalLocked() int {
	total := 0
	for _, set := range h.subscribers {
		total += len(set)
	}
	return total
}
