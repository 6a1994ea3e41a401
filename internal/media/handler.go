package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/odontosys/clinic-api/pkg/logging"
)

// Handler exposes the image upload endpoint.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Upload handles POST /api/upload. The multipart form carries the image in
// the "file" field and an optional "folder" field (default "general").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1024)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": ErrTooLarge.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer file.Close()

	folder := r.FormValue("folder")
	if folder == "" {
		folder = FolderGeneral
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		h.logger.Error("read upload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read upload"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	obj, err := h.store.Put(r.Context(), folder, contentType, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFolder), errors.Is(err, ErrUnsupportedContent):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrTooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		default:
			h.logger.Error("upload failed", "error", err, "folder", folder)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, obj)
}

// Delete handles DELETE /api/upload?path=folder/name.ext.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("path")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path query parameter is required"})
		return
	}

	if err := h.store.Delete(r.Context(), key); err != nil {
		h.logger.Error("delete upload failed", "error", err, "path", key)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete file"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
