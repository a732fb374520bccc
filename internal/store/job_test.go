package store_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	st "github.com/scribeline/transcriber/internal/store"
	"github.com/scribeline/transcriber/internal/store/model"
	"github.com/scribeline/transcriber/internal/transcription"
	"github.com/scribeline/transcriber/pkg/clock"
)

var _ = Describe("job store", func() {
	var (
		clk   *clock.ManagedClock
		store st.Store
	)

	BeforeEach(func() {
		clk = clock.NewManaged(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
		store = st.NewStore(clk)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Context("create", func() {
		It("creates a pending job", func() {
			job := store.Job().Create(context.TODO())

			Expect(job.ID).NotTo(BeEmpty())
			Expect(job.Status()).To(Equal(model.JobStatusPending))
			Expect(job.Stage).To(Equal("pending"))
			Expect(job.Progress).To(BeZero())
			Expect(job.CreatedAt).To(Equal(clk.Now()))
			Expect(store.Job().Count()).To(Equal(1))
		})

		It("creates distinct ids", func() {
			a := store.Job().Create(context.TODO())
			b := store.Job().Create(context.TODO())
			Expect(a.ID).NotTo(Equal(b.ID))
		})
	})

	Context("get", func() {
		It("returns not found for an unknown id", func() {
			_, err := store.Job().Get(context.TODO(), "missing")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("returns a copy", func() {
			job := store.Job().Create(context.TODO())
			job.Progress = 99

			got, err := store.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(got.Progress).To(BeZero())
		})
	})

	Context("update", func() {
		It("applies all supplied fields", func() {
			job := store.Job().Create(context.TODO())

			updated, err := store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().
				WithState(model.Processing{}).
				WithStage("processing").
				WithProgress(10).
				WithMetadata(model.JobMetadata{Filename: "a.mp3", Language: "English", ConversationType: "Interview"}))
			Expect(err).To(BeNil())
			Expect(updated.Status()).To(Equal(model.JobStatusProcessing))
			Expect(updated.Stage).To(Equal("processing"))
			Expect(updated.Progress).To(Equal(10))
			Expect(updated.Metadata.Filename).To(Equal("a.mp3"))
		})

		It("leaves omitted fields unchanged", func() {
			job := store.Job().Create(context.TODO())
			_, err := store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithProgress(5))
			Expect(err).To(BeNil())

			got, _ := store.Job().Get(context.TODO(), job.ID)
			Expect(got.Status()).To(Equal(model.JobStatusPending))
			Expect(got.Stage).To(Equal("pending"))
			Expect(got.Progress).To(Equal(5))
		})

		It("returns not found for an unknown id", func() {
			_, err := store.Job().Update(context.TODO(), "missing", *model.NewJobUpdate().WithProgress(1))
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("keeps the result of a completed job", func() {
			job := store.Job().Create(context.TODO())
			_, err := store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Processing{}))
			Expect(err).To(BeNil())
			_, err = store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Completed{Result: transcription.Result{Text: "done"}}))
			Expect(err).To(BeNil())

			got, _ := store.Job().Get(context.TODO(), job.ID)
			result, ok := got.Result()
			Expect(ok).To(BeTrue())
			Expect(result.Text).To(Equal("done"))
			_, failed := got.FailureMessage()
			Expect(failed).To(BeFalse())
		})

		It("rejects state changes on a terminal job and applies nothing", func() {
			job := store.Job().Create(context.TODO())
			_, err := store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Failed{Error: "boom"}).WithStage("failed"))
			Expect(err).To(BeNil())

			_, err = store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().
				WithState(model.Processing{}).
				WithStage("processing").
				WithProgress(10))
			Expect(errors.Is(err, st.ErrJobFinalized)).To(BeTrue())

			got, _ := store.Job().Get(context.TODO(), job.ID)
			Expect(got.Status()).To(Equal(model.JobStatusFailed))
			Expect(got.Stage).To(Equal("failed"))
			Expect(got.Progress).To(BeZero())
			msg, ok := got.FailureMessage()
			Expect(ok).To(BeTrue())
			Expect(msg).To(Equal("boom"))
		})

		It("rejects skipping processing", func() {
			job := store.Job().Create(context.TODO())
			_, err := store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Completed{}))

			var transitionErr *st.InvalidTransitionError
			Expect(errors.As(err, &transitionErr)).To(BeTrue())
			Expect(transitionErr.From).To(Equal(model.JobStatusPending))
			Expect(transitionErr.To).To(Equal(model.JobStatusCompleted))
			Expect(errors.Is(err, st.ErrJobFinalized)).To(BeFalse())
		})

		It("never shows a half applied update to readers", func() {
			job := store.Job().Create(context.TODO())
			_, err := store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Processing{}))
			Expect(err).To(BeNil())

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 1; i <= 500; i++ {
					_, err := store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithProgress(i).WithStage(stageFor(i)))
					Expect(err).To(BeNil())
				}
			}()
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < 500; i++ {
					got, err := store.Job().Get(context.TODO(), job.ID)
					Expect(err).To(BeNil())
					if got.Progress > 0 {
						Expect(got.Stage).To(Equal(stageFor(got.Progress)))
					}
				}
			}()
			wg.Wait()
		})
	})

	Context("evict", func() {
		It("removes only jobs older than the max age", func() {
			old := store.Job().Create(context.TODO())
			clk.Advance(2 * time.Hour)
			fresh := store.Job().Create(context.TODO())
			clk.Advance(30 * time.Minute)

			Expect(store.Job().Evict(context.TODO(), time.Hour)).To(Equal(1))

			_, err := store.Job().Get(context.TODO(), old.ID)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
			_, err = store.Job().Get(context.TODO(), fresh.ID)
			Expect(err).To(BeNil())
		})

		It("removes everything with a zero max age", func() {
			for i := 0; i < 3; i++ {
				store.Job().Create(context.TODO())
			}
			Expect(store.Job().Evict(context.TODO(), 0)).To(Equal(3))
			Expect(store.Job().Count()).To(BeZero())
		})

		It("keeps a job exactly at the max age", func() {
			store.Job().Create(context.TODO())
			clk.Advance(time.Hour)
			Expect(store.Job().Evict(context.TODO(), time.Hour)).To(BeZero())
		})
	})
})

func stageFor(progress int) string {
	if progress%2 == 0 {
		return "even"
	}
	return "odd"
}
