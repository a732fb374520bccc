package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Catalog answers which form values the service accepts.
type Catalog interface {
	IsLanguage(language string) bool
	IsConversationType(conversationType string) bool
	IsSupportedExtension(ext string) bool
	SupportedFormats() string
}

// UploadForm holds the fields of an upload request, checked in declaration
// order.
type UploadForm struct {
	Language         string `validate:"language"`
	ConversationType string `validate:"conversation_type"`
	Filename         string `validate:"filename,audio_ext"`
}

func registerFn(tag string, fn validator.Func) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewUploadValidationRules(catalog Catalog) []ValidationRule {
	return []ValidationRule{
		{
			Rule:    registerFn("language", memberValidator(catalog.IsLanguage)),
			Tag:     "language",
			Message: func(v string) string { return fmt.Sprintf("Invalid language: %s", v) },
		},
		{
			Rule:    registerFn("conversation_type", memberValidator(catalog.IsConversationType)),
			Tag:     "conversation_type",
			Message: func(v string) string { return fmt.Sprintf("Invalid conversation type: %s", v) },
		},
		{
			Rule:    registerFn("filename", filenameValidator),
			Tag:     "filename",
			Message: func(string) string { return "No filename provided" },
		},
		{
			Rule: registerFn("audio_ext", extensionValidator(catalog.IsSupportedExtension)),
			Tag:  "audio_ext",
			Message: func(v string) string {
				return fmt.Sprintf("Unsupported file format: %s. Supported: %s",
					strings.ToLower(filepath.Ext(v)), catalog.SupportedFormats())
			},
		},
	}
}
