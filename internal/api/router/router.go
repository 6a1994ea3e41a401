// Package router assembles the HTTP surface of the clinic API.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odontosys/clinic-api/internal/appointments"
	httpmiddleware "github.com/odontosys/clinic-api/internal/http/middleware"
	"github.com/odontosys/clinic-api/internal/media"
	"github.com/odontosys/clinic-api/internal/odontogram"
	"github.com/odontosys/clinic-api/internal/patients"
	"github.com/odontosys/clinic-api/internal/presupuestos"
	"github.com/odontosys/clinic-api/internal/reports"
	"github.com/odontosys/clinic-api/pkg/logging"
)

// Config holds router configuration. Optional handlers are skipped when nil
// so tests and partial deployments can mount only what they need.
type Config struct {
	Logger              *logging.Logger
	PatientsHandler     *patients.Handler
	AppointmentsHandler *appointments.Handler
	OdontogramHandler   *odontogram.Handler
	PresupuestosHandler *presupuestos.Handler
	MediaHandler        *media.Handler
	ReportsHandler      *reports.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// CallbackRateLimit caps requests/sec to the public callback endpoint.
	// Zero disables the limiter.
	CallbackRateLimit float64
	CallbackBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: health, metrics and the patient answer link.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.PresupuestosHandler != nil {
			public.Group(func(cb chi.Router) {
				if cfg.CallbackRateLimit > 0 {
					burst := cfg.CallbackBurst
					if burst <= 0 {
						burst = 10
					}
					cb.Use(httpmiddleware.RateLimit(cfg.CallbackRateLimit, burst))
				}
				cb.Get("/presupuesto/respuesta", cfg.PresupuestosHandler.Callback)
				cb.Post("/presupuesto/respuesta", cfg.PresupuestosHandler.Callback)
			})
			public.Get("/presupuesto/confirmacion", cfg.PresupuestosHandler.ConfirmationPage)
		}
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.PatientsHandler != nil {
			api.Route("/patients", func(r chi.Router) {
				r.Post("/", cfg.PatientsHandler.Create)
				r.Get("/", cfg.PatientsHandler.List)
				r.Get("/{id}", cfg.PatientsHandler.Get)
				r.Put("/{id}", cfg.PatientsHandler.Update)
				r.Delete("/{id}", cfg.PatientsHandler.Delete)
			})
		}

		if cfg.AppointmentsHandler != nil {
			api.Route("/appointments", func(r chi.Router) {
				r.Get("/available-slots", cfg.AppointmentsHandler.GetAvailability)
				r.Post("/", cfg.AppointmentsHandler.Create)
				r.Get("/", cfg.AppointmentsHandler.List)
				r.Get("/{id}", cfg.AppointmentsHandler.Get)
				r.Put("/{id}", cfg.AppointmentsHandler.Update)
				r.Patch("/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
				r.Delete("/{id}", cfg.AppointmentsHandler.Cancel)
			})
		}

		if cfg.OdontogramHandler != nil {
			api.Route("/dental-treatments", func(r chi.Router) {
				r.Post("/", cfg.OdontogramHandler.Create)
				r.Get("/patient/{patientID}", cfg.OdontogramHandler.ListByPatient)
				r.Get("/patient/{patientID}/chart", cfg.OdontogramHandler.Chart)
				r.Get("/{id}", cfg.OdontogramHandler.Get)
				r.Put("/{id}", cfg.OdontogramHandler.Update)
				r.Delete("/{id}", cfg.OdontogramHandler.Delete)
			})
		}

		if cfg.PresupuestosHandler != nil {
			api.Route("/presupuestos", func(r chi.Router) {
				r.Post("/", cfg.PresupuestosHandler.Create)
				r.Get("/", cfg.PresupuestosHandler.List)
				r.Get("/stats", cfg.PresupuestosHandler.Stats)
				r.Get("/{id}", cfg.PresupuestosHandler.Get)
				r.Put("/{id}", cfg.PresupuestosHandler.Update)
				r.Delete("/{id}", cfg.PresupuestosHandler.Delete)
				r.Post("/{id}/enviar", cfg.PresupuestosHandler.Send)
				r.Patch("/{id}/estado", cfg.PresupuestosHandler.Decide)
			})
		}

		if cfg.MediaHandler != nil {
			api.Post("/upload", cfg.MediaHandler.Upload)
			api.Delete("/upload", cfg.MediaHandler.Delete)
		}

		if cfg.ReportsHandler != nil {
			api.Route("/reports", func(r chi.Router) {
				r.Get("/patients", cfg.ReportsHandler.PatientStats)
				r.Get("/appointments", cfg.ReportsHandler.AppointmentStats)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
