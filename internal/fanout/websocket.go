package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// CloseJobNotFound is sent when a client subscribes to an unknown job.
	CloseJobNotFound = 4004

	defaultWriteTimeout = 10 * time.Second
)

// WebSocketChannel is a Channel over a gorilla websocket connection. Writes
// are serialized, reads belong to a single reader goroutine.
type WebSocketChannel struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	return &WebSocketChannel{conn: conn, writeTimeout: defaultWriteTimeout}
}

func (c *WebSocketChannel) Send(ctx context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}

	if err := c.conn.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

// SendText writes a raw text frame, used for keep-alive replies.
func (c *WebSocketChannel) SendText(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}

	if err := c.conn.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// ReadText blocks until the client sends a text frame or the connection fails.
func (c *WebSocketChannel) ReadText() (string, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind == websocket.TextMessage {
			return string(data), nil
		}
	}
}

// CloseWithReason sends a close frame with code and reason, then closes the
// connection.
func (c *WebSocketChannel) CloseWithReason(code int, reason string) error {
	c.mu.Lock()
	if !c.closed {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(c.writeTimeout))
	}
	c.mu.Unlock()
	return c.Close()
}

func (c *WebSocketChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *WebSocketChannel) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}
