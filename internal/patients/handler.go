package patients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odontosys/clinic-api/pkg/logging"
)

// Handler handles HTTP requests for patients.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new patients handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /api/patients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	patient, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateCedula):
			http.Error(w, err.Error(), http.StatusConflict)
		case isValidationError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to create patient", "error", err)
			http.Error(w, "failed to create patient", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("patient created", "id", patient.ID, "cedula", patient.Cedula)
	writeJSON(w, http.StatusCreated, patient)
}

// List handles GET /api/patients?search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.repo.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list patients", "error", err)
		http.Error(w, "failed to list patients", http.StatusInternalServerError)
		return
	}
	if patients == nil {
		patients = []*Patient{}
	}
	writeJSON(w, http.StatusOK, patients)
}

// Get handles GET /api/patients/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	patient, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient", "error", err)
		http.Error(w, "failed to load patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// Update handles PUT /api/patients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	patient, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrDuplicateCedula):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to update patient", "error", err)
			http.Error(w, "failed to update patient", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// Delete handles DELETE /api/patients/{id}. This is a hard delete; the
// schema cascades to the patient's treatments and appointments.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete patient", "error", err, "id", id)
		http.Error(w, "failed to delete patient", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	for _, v := range []error{ErrMissingCedula, ErrMissingName, ErrMissingPhone, ErrInvalidDateBirth} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
