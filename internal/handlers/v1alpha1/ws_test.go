package v1alpha1_test

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scribeline/transcriber/internal/fanout"
	"github.com/scribeline/transcriber/internal/store/model"
	"github.com/scribeline/transcriber/internal/transcription"
)

var _ = Describe("websocket handler", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv(GinkgoT().TempDir(), 1024*1024)
	})

	AfterEach(func() {
		env.Close()
	})

	dial := func(jobID string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/ws/" + jobID
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).To(BeNil())
		DeferCleanup(func() { _ = conn.Close() })
		Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		return conn
	}

	readEvent := func(conn *websocket.Conn) map[string]any {
		var msg map[string]any
		Expect(conn.ReadJSON(&msg)).To(Succeed())
		return msg
	}

	It("closes with 4004 for an unknown job", func() {
		conn := dial("unknown")

		_, _, err := conn.ReadMessage()
		Expect(websocket.IsCloseError(err, fanout.CloseJobNotFound)).To(BeTrue())
	})

	It("sends a progress snapshot on attach", func() {
		job := env.jobSrv.CreateJob(context.TODO())
		conn := dial(job.ID)

		msg := readEvent(conn)
		Expect(msg).To(HaveKeyWithValue("type", "progress"))
		Expect(msg).To(HaveKeyWithValue("stage", "pending"))
		Expect(msg).To(HaveKeyWithValue("percent", BeNumerically("==", 0)))
		Eventually(func() int { return env.hub.Count(job.ID) }).Should(Equal(1))
	})

	It("sends the result to a subscriber that attaches after completion", func() {
		job := env.jobSrv.CreateJob(context.TODO())
		_, err := env.store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Processing{}))
		Expect(err).To(BeNil())
		_, err = env.store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Completed{Result: transcription.Result{Text: "late"}}))
		Expect(err).To(BeNil())

		msg := readEvent(dial(job.ID))
		Expect(msg).To(HaveKeyWithValue("type", "completed"))
		Expect(msg["result"]).To(HaveKeyWithValue("text", "late"))
	})

	It("sends the error of a failed job", func() {
		job := env.jobSrv.CreateJob(context.TODO())
		_, err := env.store.Job().Update(context.TODO(), job.ID, *model.NewJobUpdate().WithState(model.Failed{Error: "boom"}))
		Expect(err).To(BeNil())

		msg := readEvent(dial(job.ID))
		Expect(msg).To(Equal(map[string]any{"type": "error", "message": "boom"}))
	})

	It("answers ping with pong", func() {
		job := env.jobSrv.CreateJob(context.TODO())
		conn := dial(job.ID)
		readEvent(conn)

		Expect(conn.WriteMessage(websocket.TextMessage, []byte("ping"))).To(Succeed())
		_, data, err := conn.ReadMessage()
		Expect(err).To(BeNil())
		Expect(string(data)).To(Equal("pong"))
	})

	It("streams progress until completion", func() {
		env.transcriber.release = make(chan struct{})
		job := env.jobSrv.CreateJob(context.TODO())
		conn := dial(job.ID)
		Expect(readEvent(conn)).To(HaveKeyWithValue("stage", "pending"))
		Eventually(func() int { return env.hub.Count(job.ID) }).Should(Equal(1))

		env.jobSrv.Schedule(job.ID, "unused.mp3", "English", "Interview", serviceNotifier(env))

		Expect(readEvent(conn)).To(HaveKeyWithValue("stage", "processing"))
		Expect(readEvent(conn)).To(HaveKeyWithValue("stage", "transcribing"))
		close(env.transcriber.release)

		msg := readEvent(conn)
		Expect(msg).To(HaveKeyWithValue("type", "completed"))
		Expect(msg["result"]).To(HaveKeyWithValue("text", "hello there"))
	})

	It("forgets a subscriber once it disconnects", func() {
		job := env.jobSrv.CreateJob(context.TODO())
		conn := dial(job.ID)
		readEvent(conn)
		Eventually(func() int { return env.hub.Count(job.ID) }).Should(Equal(1))

		Expect(conn.Close()).To(Succeed())
		Eventually(func() int { return env.hub.Count(job.ID) }).Should(BeZero())
	})
})
