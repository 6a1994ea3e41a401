package odontogram

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odontosys/clinic-api/pkg/logging"
)

// Handler exposes the dental treatment endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /api/dental-treatments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	t, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrDuplicateZone) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("create treatment failed", "error", err, "patient_id", req.PatientID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create treatment"})
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListByPatient handles GET /api/dental-treatments/patient/{patientID}.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	treatments, err := h.repo.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("list treatments failed", "error", err, "patient_id", patientID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list treatments"})
		return
	}
	if treatments == nil {
		treatments = []*Treatment{}
	}
	writeJSON(w, http.StatusOK, treatments)
}

// Chart handles GET /api/dental-treatments/patient/{patientID}/chart. It
// reduces the history to the latest entry per tooth for the odontogram view.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	treatments, err := h.repo.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("chart query failed", "error", err, "patient_id", patientID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build chart"})
		return
	}
	writeJSON(w, http.StatusOK, BuildChart(treatments))
}

// Get handles GET /api/dental-treatments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTreatmentNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "treatment not found"})
			return
		}
		h.logger.Error("get treatment failed", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get treatment"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Update handles PUT /api/dental-treatments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status != nil && !validTreatmentStatus(*req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidTreatmentStatus.Error()})
		return
	}

	t, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrTreatmentNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "treatment not found"})
			return
		}
		h.logger.Error("update treatment failed", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update treatment"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/dental-treatments/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrTreatmentNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "treatment not found"})
			return
		}
		h.logger.Error("delete treatment failed", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete treatment"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
