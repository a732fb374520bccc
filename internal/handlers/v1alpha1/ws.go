package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scribeline/transcriber/internal/fanout"
)

const (
	pingMessage = "ping"
	pongMessage = "pong"
)

// (GET /api/ws/{id})
func (h *ServiceHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	log := zap.S().Named("ws_handler")
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		log.Debugw("websocket upgrade failed", "job_id", id, "error", err)
		return
	}
	ch := fanout.NewWebSocketChannel(conn)

	if _, err := h.jobSrv.GetJob(ctx, id); err != nil {
		_ = ch.CloseWithReason(fanout.CloseJobNotFound, "Job not found")
		return
	}

	// subscribe before reading the snapshot so a checkpoint landing in
	// between is delivered rather than lost
	h.hub.Subscribe(ctx, ch, id)
	defer func() {
		h.hub.Unsubscribe(ch, id)
		_ = ch.Close()
	}()

	job, err := h.jobSrv.GetJob(ctx, id)
	if err != nil {
		_ = ch.CloseWithReason(fanout.CloseJobNotFound, "Job not found")
		return
	}
	if err := ch.Send(ctx, fanout.SnapshotEvent(*job)); err != nil {
		log.Debugw("failed to send snapshot", "job_id", id, "error", err)
		return
	}

	for {
		text, err := ch.ReadText()
		if err != nil {
			log.Debugw("subscriber disconnected", "job_id", id, "error", err)
			return
		}
		if text == pingMessage {
			if err := ch.SendText(ctx, pongMessage); err != nil {
				return
			}
		}
	}
}
