package v1alpha1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/scribeline/transcriber/internal/handlers/v1alpha1/mappers"
	"github.com/scribeline/transcriber/internal/service"
)

// (GET /api/jobs/{id})
func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.jobSrv.GetJob(r.Context(), id)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			writeError(w, r, http.StatusNotFound, "Job not found")
		default:
			zap.S().Named("job_handler").Errorw("failed to get job", "job_id", id, "error", err)
			writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to get job: %v", err))
		}
		return
	}

	render.JSON(w, r, mappers.JobToApi(*job))
}
