// ABOUTME: Documents view handlers: list, PDF upload, metadata edit and delete
// ABOUTME: Uploads are validated locally before anything is sent to the backend

package webadmin

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/session"
)

// Documents messages
const (
	msgDocumentsLoadError   = "Erreur lors du chargement des documents"
	msgDocumentAdded        = "Document ajouté avec succès !"
	msgDocumentUploadError  = "Erreur lors de l'upload"
	msgDocumentUpdated      = "Document modifié avec succès"
	msgDocumentUpdateError  = "Erreur lors de la modification du document"
	msgDocumentDeleted      = "Document supprimé avec succès"
	msgDocumentDeleteError  = "Erreur lors de la suppression du document"
	documentsPath           = "/documents"
	uploadMultipartOverhead = 1 << 20
)

func (a *Admin) handleDocuments(w http.ResponseWriter, r *http.Request) {
	uploader := strings.TrimSpace(r.URL.Query().Get("uploaded_by"))
	if uploader == "" {
		uploader = operatorName(r)
	}
	a.renderDocuments(w, r, documentForm{UploadedBy: uploader}, nil)
}

// documentsTarget is the list page with the last uploader kept in the form
func documentsTarget(uploader string) string {
	if uploader == "" {
		return documentsPath
	}
	return documentsPath + "?" + url.Values{"uploaded_by": {uploader}}.Encode()
}

// renderDocuments fetches the list and renders the page. A non-nil msg replaces any pending flash.
func (a *Admin) renderDocuments(w http.ResponseWriter, r *http.Request, form documentForm, msg *flash) {
	data := documentsData{
		shellData: a.shell(w, r, "Documents", navDocuments),
		Form:      form,
	}
	if msg != nil {
		data.Flash = msg
	}

	docs, err := a.api.ListDocuments(r.Context())
	if err != nil {
		a.logger.Error("failed to list documents", "error", err)
		data.LoadError = msgDocumentsLoadError
	}
	data.Documents = docs

	a.render(w, "documents.html", data)
}

func (a *Admin) handleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, backend.MaxUploadSize+uploadMultipartOverhead)
	if err := r.ParseMultipartForm(backend.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.renderDocuments(w, r, documentForm{UploadedBy: operatorName(r)}, &flash{Kind: flashError, Text: backend.MsgFileTooLarge})
			return
		}
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	if !a.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	form := documentForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		UploadedBy:  strings.TrimSpace(r.FormValue("uploaded_by")),
	}
	if form.UploadedBy == "" {
		form.UploadedBy = operatorName(r)
	}

	var (
		filename string
		size     int64
	)
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		filename = header.Filename
		size = header.Size
	} else if !errors.Is(err, http.ErrMissingFile) {
		a.logger.Warn("failed to read uploaded file", "error", err)
	}

	if err := backend.ValidateUpload(form.Title, filename, size); err != nil {
		a.renderDocuments(w, r, form, &flash{Kind: flashError, Text: err.Error()})
		return
	}

	err = a.api.UploadDocument(r.Context(), backend.DocumentUpload{
		Title:       form.Title,
		Description: form.Description,
		UploadedBy:  form.UploadedBy,
		Filename:    filename,
		File:        file,
	})
	if err != nil {
		a.logger.Error("failed to upload document", "filename", filename, "error", err)
		a.renderDocuments(w, r, form, &flash{Kind: flashError, Text: "Erreur: " + backend.UserMessage(err, msgDocumentUploadError)})
		return
	}

	a.logger.Info("document uploaded", "filename", filename, "uploaded_by", form.UploadedBy)
	redirectWithFlash(w, r, documentsTarget(form.UploadedBy), flashSuccess, msgDocumentAdded)
}

func (a *Admin) handleDocumentUpdate(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	id := r.PathValue("id")
	form := documentEditForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if msg := checkFields(form, documentEditFormMessages); msg != "" {
		redirectWithFlash(w, r, documentsPath, flashError, msg)
		return
	}

	update := backend.DocumentUpdate{Title: form.Title, Description: form.Description}
	if err := a.api.UpdateDocument(r.Context(), id, update); err != nil {
		a.logger.Error("failed to update document", "id", id, "error", err)
		redirectWithFlash(w, r, documentsPath, flashError, msgDocumentUpdateError)
		return
	}

	redirectWithFlash(w, r, documentsPath, flashSuccess, msgDocumentUpdated)
}

func (a *Admin) handleDocumentDelete(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	id := r.PathValue("id")
	if err := a.api.DeleteDocument(r.Context(), id); err != nil {
		a.logger.Error("failed to delete document", "id", id, "error", err)
		redirectWithFlash(w, r, documentsPath, flashError, msgDocumentDeleteError)
		return
	}

	a.logger.Info("document deleted", "id", id)
	redirectWithFlash(w, r, documentsPath, flashSuccess, msgDocumentDeleted)
}

// handleDocumentFile sends the browser to the backend copy of the file
func (a *Admin) handleDocumentFile(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, a.api.DocumentFileURL(r.PathValue("filename")), http.StatusFound)
}

// operatorName returns the username of the signed-in operator
func operatorName(r *http.Request) string {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess.Username
	}
	return ""
}
