package fanout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scribeline/transcriber/internal/fanout"
)

var _ = Describe("websocket channel", func() {
	var (
		server  *httptest.Server
		serverC chan *fanout.WebSocketChannel
		client  *websocket.Conn
	)

	BeforeEach(func() {
		serverC = make(chan *fanout.WebSocketChannel, 1)
		upgrader := websocket.Upgrader{}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			serverC <- fanout.NewWebSocketChannel(conn)
		}))

		var err error
		client, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		client.Close()
		server.Close()
	})

	It("sends events as json", func() {
		ch := <-serverC
		defer ch.Close()

		Expect(ch.Send(context.TODO(), fanout.ProgressEvent("processing", 10))).To(Succeed())

		var msg map[string]any
		Expect(client.ReadJSON(&msg)).To(Succeed())
		Expect(msg).To(HaveKeyWithValue("type", "progress"))
		Expect(msg).To(HaveKeyWithValue("stage", "processing"))
		Expect(msg).To(HaveKeyWithValue("percent", BeNumerically("==", 10)))
	})

	It("reads text frames and answers", func() {
		ch := <-serverC
		defer ch.Close()

		Expect(client.WriteMessage(websocket.TextMessage, []byte("ping"))).To(Succeed())
		text, err := ch.ReadText()
		Expect(err).To(BeNil())
		Expect(text).To(Equal("ping"))

		Expect(ch.SendText(context.TODO(), "pong")).To(Succeed())
		_, data, err := client.ReadMessage()
		Expect(err).To(BeNil())
		Expect(string(data)).To(Equal("pong"))
	})

	It("closes with a code and reason", func() {
		ch := <-serverC
		Expect(ch.CloseWithReason(fanout.CloseJobNotFound, "Job not found")).To(Succeed())

		_, _, err := client.ReadMessage()
		Expect(websocket.IsCloseError(err, fanout.CloseJobNotFound)).To(BeTrue())
		Expect(err.(*websocket.CloseError).Text).To(Equal("Job not found"))

		Expect(ch.Close()).To(Succeed())
	})

	It("fails to send once closed", func() {
		ch := <-serverC
		Expect(ch.Close()).To(Succeed())
		Expect(ch.Send(context.TODO(), fanout.ErrorEvent("x"))).NotTo(Succeed())
	})
})
