package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odontosys/clinic-api/pkg/logging"
)

// Handler handles HTTP requests for appointments and availability.
type Handler struct {
	service *Service
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler.
func NewHandler(service *Service, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

// GetAvailability handles GET /api/appointments/available-slots?date=yyyy-MM-dd
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date parameter is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Availability(r.Context(), date)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("availability query failed", "error", err, "date", date)
		http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrClosedDay), errors.Is(err, ErrOutsideBusinessHours), errors.Is(err, ErrInvalidTimeRange):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case isValidationError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to create appointment", "error", err)
			http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// List handles GET /api/appointments with optional filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		PatientID: q.Get("patientId"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Status:    q.Get("status"),
	}

	appts, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}

	writeJSON(w, http.StatusOK, appts)
}

// Get handles GET /api/appointments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "error", err)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// Update handles PUT /api/appointments/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrSlotTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to update appointment", "error", err)
			http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/appointments/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to change status", "error", err)
			http.Error(w, "failed to change status", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// Cancel handles DELETE /api/appointments/{id}. Cancellation is a soft
// delete; the row is kept with status cancelled.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	appt, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to cancel appointment", "error", err)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

func isValidationError(err error) bool {
	for _, v := range []error{
		ErrMissingPatient, ErrMissingDate, ErrMissingStartTime,
		ErrMissingTreatment, ErrInvalidDate, ErrInvalidTime,
	} {
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
