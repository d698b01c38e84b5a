// ABOUTME: Document upload validation run before any network call
// ABOUTME: Enforces title, PDF extension and the 10 MiB size ceiling

package backend

import (
	"path/filepath"
	"strings"
)

// MaxUploadSize is the largest accepted document, in bytes.
const MaxUploadSize = 10 << 20

// Upload validation messages
const (
	MsgTitleRequired = "Le titre est requis."
	MsgFileRequired  = "Veuillez sélectionner un fichier PDF."
	MsgPDFOnly       = "Seuls les fichiers PDF sont acceptés."
	MsgFileTooLarge  = "Le fichier est trop volumineux (maximum 10MB)."
)

// ValidationError is a client-side rejection. Its message is shown as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateUpload checks an upload before it is sent.
// An empty filename means no file was selected.
func ValidateUpload(title, filename string, size int64) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Message: MsgTitleRequired}
	}
	if filename == "" {
		return &ValidationError{Message: MsgFileRequired}
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return &ValidationError{Message: MsgPDFOnly}
	}
	if size > MaxUploadSize {
		return &ValidationError{Message: MsgFileTooLarge}
	}
	return nil
}
