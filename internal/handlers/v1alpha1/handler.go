package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"github.com/thoas/go-funk"

	api "github.com/scribeline/transcriber/api/v1alpha1"
	"github.com/scribeline/transcriber/internal/config"
	"github.com/scribeline/transcriber/internal/fanout"
	"github.com/scribeline/transcriber/internal/handlers/validator"
	"github.com/scribeline/transcriber/internal/service"
	"github.com/scribeline/transcriber/pkg/requestid"
)

const uploadChunkSize = 1024 * 1024

type ServiceHandler struct {
	cfg       *config.Config
	jobSrv    *service.JobService
	hub       *fanout.Hub
	notifier  service.Notifier
	validator *validator.Validator
	upgrader  websocket.Upgrader
}

func NewServiceHandler(cfg *config.Config, jobSrv *service.JobService, hub *fanout.Hub, notifier service.Notifier) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewUploadValidationRules(cfg.Catalog)...)

	h := &ServiceHandler{
		cfg:       cfg,
		jobSrv:    jobSrv,
		hub:       hub,
		notifier:  notifier,
		validator: v,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}

	return h
}

// Register mounts the handlers on r.
func (h *ServiceHandler) Register(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.GetConfig)
		r.Post("/upload", h.Upload)
		r.Get("/jobs/{id}", h.GetJob)
		r.Get("/ws/{id}", h.Subscribe)
	})
}

// Browsers always send Origin on websocket upgrades; other clients may not.
func (h *ServiceHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return funk.ContainsString(h.cfg.Service.CorsOrigins, origin)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, api.Error{Detail: detail, RequestID: requestid.FromRequest(r)})
}
