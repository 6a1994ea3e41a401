package reports

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/odontosys/clinic-api/pkg/logging"
)

// Handler exposes the dashboard report endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
	now     func() time.Time
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

// PatientStats handles GET /api/reports/patients.
func (h *Handler) PatientStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PatientStats(r.Context())
	if err != nil {
		h.logger.Error("patient stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load patient stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AppointmentStats handles GET /api/reports/appointments.
func (h *Handler) AppointmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AppointmentStats(r.Context(), h.now())
	if err != nil {
		h.logger.Error("appointment stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load appointment stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
