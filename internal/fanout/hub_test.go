package fanout_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scribeline/transcriber/internal/fanout"
)

type recordingChannel struct {
	mu      sync.Mutex
	events  []fanout.Event
	sendErr error
	block   chan struct{}
	closed  bool
}

func (c *recordingChannel) Send(_ context.Context, event fanout.Event) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.events = append(c.events, event)
	return nil
}

func (c *recordingChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingChannel) Events() []fanout.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]fanout.Event(nil), c.events...)
}

var _ = Describe("hub", func() {
	var hub *fanout.Hub

	BeforeEach(func() {
		hub = fanout.NewHub()
	})

	It("delivers events to every subscriber of the job", func() {
		a, b, other := &recordingChannel{}, &recordingChannel{}, &recordingChannel{}
		hub.Subscribe(context.TODO(), a, "job-1")
		hub.Subscribe(context.TODO(), b, "job-1")
		hub.Subscribe(context.TODO(), other, "job-2")

		hub.Publish(context.TODO(), "job-1", fanout.ProgressEvent("transcribing", 30))

		Expect(a.Events()).To(Equal([]fanout.Event{fanout.ProgressEvent("transcribing", 30)}))
		Expect(b.Events()).To(HaveLen(1))
		Expect(other.Events()).To(BeEmpty())
	})

	It("ignores jobs without subscribers", func() {
		Expect(func() { hub.Publish(context.TODO(), "nobody", fanout.ErrorEvent("x")) }).NotTo(Panic())
		Expect(hub.Count("nobody")).To(BeZero())
	})

	It("drops a failing subscriber and keeps delivering to the rest", func() {
		good, bad := &recordingChannel{}, &recordingChannel{sendErr: errors.New("broken pipe")}
		hub.Subscribe(context.TODO(), good, "job-1")
		hub.Subscribe(context.TODO(), bad, "job-1")

		hub.Publish(context.TODO(), "job-1", fanout.ProgressEvent("processing", 10))
		Expect(hub.Count("job-1")).To(Equal(1))

		hub.Publish(context.TODO(), "job-1", fanout.ProgressEvent("transcribing", 30))
		Expect(good.Events()).To(HaveLen(2))
	})

	It("does not let a slow subscriber hold the lock", func() {
		slow := &recordingChannel{block: make(chan struct{})}
		hub.Subscribe(context.TODO(), slow, "job-1")

		done := make(chan struct{})
		go func() {
			defer close(done)
			hub.Publish(context.TODO(), "job-1", fanout.ProgressEvent("processing", 10))
		}()

		fast := &recordingChannel{}
		Eventually(func() int {
			hub.Subscribe(context.TODO(), fast, "job-2")
			return hub.Count("job-2")
		}).WithTimeout(time.Second).Should(Equal(1))

		close(slow.block)
		Eventually(done).Should(BeClosed())
	})

	It("forgets empty jobs on unsubscribe", func() {
		ch := &recordingChannel{}
		hub.Subscribe(context.TODO(), ch, "job-1")
		Expect(hub.Count("job-1")).To(Equal(1))

		hub.Unsubscribe(ch, "job-1")
		Expect(hub.Count("job-1")).To(BeZero())

		Expect(func() { hub.Unsubscribe(ch, "job-1") }).NotTo(Panic())
	})
})
