package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/scribeline/transcriber/internal/handlers/v1alpha1/mappers"
)

// (GET /api/config)
func (h *ServiceHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	catalog := h.cfg.Catalog
	render.JSON(w, r, mappers.ConfigToApi(
		catalog.Languages,
		catalog.ConversationTypes,
		catalog.SupportedExtensions,
		h.cfg.Service.MaxFileSize,
	))
}
