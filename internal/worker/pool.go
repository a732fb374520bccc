// Package worker runs blocking calls on a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/scribeline/transcriber/pkg/metrics"
)

const DefaultSize = 4

// Pool bounds how many submitted functions run at the same time. Work beyond
// the bound waits for a free slot.
type Pool struct {
	size int
	sem  *semaphore.Weighted
	wg   sync.WaitGroup
	busy atomic.Int64
	log  *zap.SugaredLogger
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{
		size: size,
		sem:  semaphore.NewWeighted(int64(size)),
		log:  zap.S().Named("worker_pool"),
	}
}

func (p *Pool) Size() int {
	return p.size
}

// Busy returns the number of functions running right now.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// Wait blocks until every submitted function has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	metrics.UpdateWorkersBusyMetric(int(p.busy.Add(1)))
	return nil
}

func (p *Pool) release() {
	metrics.UpdateWorkersBusyMetric(int(p.busy.Add(-1)))
	p.sem.Release(1)
}

// Future is the pending outcome of a submitted function.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the outcome is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the outcome. A cancelled ctx stops the wait, not the work.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on the pool and returns immediately. A panic in fn is
// reported as the future's error.
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(f.done)

		if err := p.acquire(ctx); err != nil {
			f.err = err
			return
		}
		defer p.release()

		defer func() {
			if r := recover(); r != nil {
				p.log.Errorw("worker panicked", "panic", r)
				f.err = fmt.Errorf("worker panicked: %v", r)
			}
		}()

		f.value, f.err = fn(ctx)
	}()

	return f
}
