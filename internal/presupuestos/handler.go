package presupuestos

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odontosys/clinic-api/pkg/logging"
)

// Handler exposes the quote endpoints.
type Handler struct {
	repo            Repository
	service         *Service
	logger          *logging.Logger
	confirmationURL string
}

func NewHandler(repo Repository, service *Service, confirmationURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, service: service, logger: logger, confirmationURL: confirmationURL}
}

// Create handles POST /api/presupuestos.
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

	p, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("create presupuesto failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create presupuesto"})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /api/presupuestos with optional estado, patient_id and
// search filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Estado:    r.URL.Query().Get("estado"),
		PatientID: r.URL.Query().Get("patient_id"),
		Search:    r.URL.Query().Get("search"),
	}
	if filter.Estado != "" && !ValidEstado(filter.Estado) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown estado filter"})
		return
	}

	out, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list presupuestos failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list presupuestos"})
		return
	}
	if out == nil {
		out = []*Presupuesto{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/presupuestos/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPresupuestoNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "presupuesto not found"})
			return
		}
		h.logger.Error("get presupuesto failed", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get presupuesto"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /api/presupuestos/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.MetodoEnvio != nil && !ValidMetodo(*req.MetodoEnvio) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidMetodo.Error()})
		return
	}
	if req.Monto != nil && *req.Monto <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidMonto.Error()})
		return
	}

	p, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrPresupuestoNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "presupuesto not found"})
			return
		}
		h.logger.Error("update presupuesto failed", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update presupuesto"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/presupuestos/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrPresupuestoNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "presupuesto not found"})
			return
		}
		h.logger.Error("delete presupuesto failed", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete presupuesto"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send handles POST /api/presupuestos/{id}/enviar.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.Send(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrPresupuestoNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "presupuesto not found"})
		case errors.Is(err, ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "el presupuesto ya fue decidido"})
		case errors.Is(err, ErrDeliveryTimeout):
			writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "el envío del presupuesto expiró"})
		case errors.Is(err, ErrDeliveryFailed):
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "no se pudo enviar el presupuesto"})
		default:
			h.logger.Error("send presupuesto failed", "error", err, "id", id)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to send presupuesto"})
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Decide handles PATCH /api/presupuestos/{id}/estado with the staff's final
// decision.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Estado string `json:"estado"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p, err := h.service.Decide(r.Context(), id, body.Estado)
	if err != nil {
		switch {
		case errors.Is(err, ErrPresupuestoNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "presupuesto not found"})
		case errors.Is(err, ErrInvalidTransition):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "transición de estado no permitida"})
		default:
			h.logger.Error("decide presupuesto failed", "error", err, "id", id)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update estado"})
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Stats handles GET /api/presupuestos/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Stats(r.Context())
	if err != nil {
		h.logger.Error("presupuesto stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Callback handles the patient's answer link. GET carries id, accion and
// token in the query and redirects to the confirmation page; POST accepts
// the same fields as JSON and answers with the updated record.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	accion := r.URL.Query().Get("accion")
	token := r.URL.Query().Get("token")

	if r.Method == http.MethodPost && id == "" {
		var body struct {
			ID     string `json:"id"`
			Accion string `json:"accion"`
			Token  string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		id, accion, token = body.ID, body.Accion, body.Token
	}
	if id == "" || accion == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id and accion are required"})
		return
	}

	p, err := h.service.HandleCallback(r.Context(), id, accion, token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAction):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "acción desconocida"})
		case errors.Is(err, ErrInvalidToken):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token inválido o vencido"})
		case errors.Is(err, ErrPresupuestoNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "presupuesto not found"})
		default:
			h.logger.Error("presupuesto callback failed", "error", err, "id", id)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record response"})
		}
		return
	}

	if r.Method == http.MethodGet && h.confirmationURL != "" {
		http.Redirect(w, r, h.confirmationURL, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
