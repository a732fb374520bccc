package v1alpha1_test

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/scribeline/transcriber/api/v1alpha1"
)

var _ = Describe("upload handler", func() {
	var (
		env       *testEnv
		uploadDir string
	)

	BeforeEach(func() {
		uploadDir = filepath.Join(GinkgoT().TempDir(), "uploads")
		env = newTestEnv(uploadDir, 1024)
	})

	AfterEach(func() {
		env.Close()
	})

	expectBadRequest := func(resp *http.Response, detail string) {
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(decode[api.Error](resp).Detail).To(Equal(detail))
	}

	It("rejects an unknown language", func() {
		resp := env.upload("a.mp3", []byte("x"), uploadField{"language", "Klingon"}, uploadField{"conversation_type", "Interview"})
		expectBadRequest(resp, "Invalid language: Klingon")
	})

	It("rejects an unknown conversation type", func() {
		resp := env.upload("a.mp3", []byte("x"), uploadField{"language", "English"}, uploadField{"conversation_type", "Podcast"})
		expectBadRequest(resp, "Invalid conversation type: Podcast")
	})

	It("rejects a request without a file", func() {
		resp := env.upload("", nil, validFields()...)
		expectBadRequest(resp, "No filename provided")
	})

	It("rejects an unsupported extension", func() {
		resp := env.upload("notes.txt", []byte("x"), validFields()...)
		expectBadRequest(resp, "Unsupported file format: .txt. Supported: .m4a, .mp3, .wav, .aac")
		Expect(env.store.Job().Count()).To(BeZero())
	})

	It("rejects a file larger than the limit", func() {
		resp := env.upload("big.mp3", bytes.Repeat([]byte("a"), 2048), validFields()...)
		Expect(resp.StatusCode).To(Equal(http.StatusRequestEntityTooLarge))
		Expect(decode[api.Error](resp).Detail).To(Equal("File too large. Maximum size: 0MB"))

		entries, _ := os.ReadDir(uploadDir)
		Expect(entries).To(BeEmpty())
	})

	It("rejects a body that is not multipart", func() {
		resp, err := http.Post(env.server.URL+"/api/upload", "application/json", bytes.NewReader([]byte("{}")))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("saves the file, runs the job and cleans up", func() {
		resp := env.upload("Meeting.MP3", []byte("ID3audio"), validFields()...)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		jobID := decode[api.Upload](resp).JobID
		Expect(jobID).NotTo(BeEmpty())

		Eventually(func() api.JobStatus {
			_, job := env.getJob(jobID)
			return job.Status
		}).Should(Equal(api.JobStatusCompleted))

		_, job := env.getJob(jobID)
		Expect(job.Progress).To(Equal(100))
		Expect(*job.Filename).To(Equal(jobID + ".mp3"))
		Expect(*job.ConversationType).To(Equal("Interview"))
		Expect(job.Result.Text).To(Equal("hello there"))

		Expect(env.transcriber.Paths()).To(Equal([]string{filepath.Join(uploadDir, jobID+".mp3")}))
		Eventually(filepath.Join(uploadDir, jobID+".mp3")).ShouldNot(BeAnExistingFile())
	})
})
