package v1alpha1

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	api "github.com/scribeline/transcriber/api/v1alpha1"
	"github.com/scribeline/transcriber/internal/handlers/validator"
	"github.com/scribeline/transcriber/internal/handlers/v1alpha1/mappers"
)

const (
	// room for the form fields and part headers on top of the file itself
	multipartOverhead = 1024 * 1024
	maxMemory         = 32 << 20
)

var errFileTooLarge = errors.New("file too large")

// (POST /api/upload)
func (h *ServiceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := zap.S().Named("upload_handler")
	maxSize := h.cfg.Service.MaxFileSize

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, tooLargeMessage(maxSize))
			return
		}
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read multipart form: %v", err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read file: %v", err))
		return
	}
	if file != nil {
		defer file.Close()
	}

	form := mappers.UploadFormFromRequest(r, header)
	if err := h.validator.Struct(form); err != nil {
		var invalid *validator.ErrInvalidForm
		if errors.As(err, &invalid) {
			writeError(w, r, http.StatusBadRequest, invalid.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if header.Size > maxSize {
		writeError(w, r, http.StatusRequestEntityTooLarge, tooLargeMessage(maxSize))
		return
	}

	job := h.jobSrv.CreateJob(r.Context())
	ext := strings.ToLower(filepath.Ext(form.Filename))
	path := filepath.Join(h.cfg.Service.UploadDir, job.ID+ext)

	size, err := saveUpload(file, path, maxSize)
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, errFileTooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, tooLargeMessage(maxSize))
			return
		}
		log.Errorw("failed to save uploaded file", "job_id", job.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	log.Infow("file saved", "job_id", job.ID, "path", path, "bytes", size)

	h.jobSrv.Schedule(job.ID, path, form.Language, form.ConversationType, h.notifier)

	render.JSON(w, r, api.Upload{JobID: job.ID})
}

// saveUpload copies src to path in fixed size chunks and stops once more than
// maxSize bytes were read.
func saveUpload(src multipart.File, path string, maxSize int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, pkgerrors.Wrap(err, "creating upload directory")
	}

	dst, err := os.Create(path)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "creating %s", path)
	}
	defer dst.Close()

	var total int64
	buf := make([]byte, uploadChunkSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > maxSize {
				return total, errFileTooLarge
			}
			if _, err := dst.Write(buf[:n]); err != nil {
				return total, pkgerrors.Wrap(err, "writing upload")
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return total, pkgerrors.Wrap(readErr, "reading upload")
		}
	}

	if err := dst.Close(); err != nil {
		return total, pkgerrors.Wrap(err, "closing upload")
	}
	return total, nil
}

func tooLargeMessage(maxSize int64) string {
	return fmt.Sprintf("File too large. Maximum size: %dMB", maxSize/(1024*1024))
}
