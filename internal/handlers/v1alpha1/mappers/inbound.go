package mappers

import (
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/scribeline/transcriber/internal/handlers/validator"
)

// UploadFormFromRequest reads the form values of a parsed multipart upload.
// header may be nil when the request carried no file part.
func UploadFormFromRequest(r *http.Request, header *multipart.FileHeader) validator.UploadForm {
	form := validator.UploadForm{
		Language:         r.FormValue("language"),
		ConversationType: r.FormValue("conversation_type"),
	}
	if header != nil {
		form.Filename = filepath.Base(header.Filename)
		if form.Filename == "." || form.Filename == string(filepath.Separator) {
			form.Filename = ""
		}
	}
	return form
}
