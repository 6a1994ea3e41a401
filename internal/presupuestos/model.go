// Package presupuestos manages treatment quotes and their delivery to
// patients through the automation webhook.
package presupuestos

import (
	"strings"
	"time"
)

// Quote states. A quote only becomes "enviado" after a confirmed delivery.
const (
	EstadoPendiente = "pendiente"
	EstadoEnviado   = "enviado"
	EstadoAprobado  = "aprobado"
	EstadoRechazado = "rechazado"
)

// Patient responses recorded from the callback.
const (
	RespuestaPendiente = "pendiente"
	RespuestaAprobado  = "aprobado"
	RespuestaRechazado = "rechazado"
)

// Delivery methods.
const (
	MetodoEmail    = "email"
	MetodoWhatsApp = "whatsapp"
	MetodoBoth     = "both"
)

// Callback actions sent by the patient-facing links.
const (
	AccionAceptar    = "aceptar"
	AccionRechazar   = "rechazar"
	AccionNoAprobado = "no_aprobado"
)

// Presupuesto is a treatment quote. Patient identity is denormalized so the
// quote survives patient edits; patient_id is an optional link back.
type Presupuesto struct {
	ID               string     `json:"id"`
	PatientID        string     `json:"patient_id,omitempty"`
	Nombre           string     `json:"nombre"`
	Apellido         string     `json:"apellido"`
	Cedula           string     `json:"cedula,omitempty"`
	Email            string     `json:"email,omitempty"`
	Telefono         string     `json:"telefono,omitempty"`
	Tratamiento      string     `json:"tratamiento"`
	Descripcion      string     `json:"descripcion,omitempty"`
	Monto            float64    `json:"monto"`
	ImagenURL        string     `json:"imagen_url,omitempty"`
	MetodoEnvio      string     `json:"metodo_envio"`
	Estado           string     `json:"estado"`
	RespuestaCliente string     `json:"respuesta_cliente"`
	FechaEnvio       *time.Time `json:"fecha_envio,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CreateRequest is the payload for registering a quote.
type CreateRequest struct {
	PatientID   string  `json:"patient_id"`
	Nombre      string  `json:"nombre"`
	Apellido    string  `json:"apellido"`
	Cedula      string  `json:"cedula"`
	Email       string  `json:"email"`
	Telefono    string  `json:"telefono"`
	Tratamiento string  `json:"tratamiento"`
	Descripcion string  `json:"descripcion"`
	Monto       float64 `json:"monto"`
	ImagenURL   string  `json:"imagen_url"`
	MetodoEnvio string  `json:"metodo_envio"`
}

// Validate checks required fields and vocabulary.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Nombre) == "" || strings.TrimSpace(r.Apellido) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Tratamiento) == "" {
		return ErrMissingTratamiento
	}
	if r.Monto <= 0 {
		return ErrInvalidMonto
	}
	if !ValidMetodo(r.MetodoEnvio) {
		return ErrInvalidMetodo
	}
	if r.MetodoEnvio != MetodoWhatsApp && strings.TrimSpace(r.Email) == "" {
		return ErrMissingEmail
	}
	if r.MetodoEnvio != MetodoEmail && strings.TrimSpace(r.Telefono) == "" {
		return ErrMissingTelefono
	}
	return nil
}

// UpdateRequest carries partial quote edits. Nil fields are left unchanged.
// Estado and respuesta_cliente are not editable here; they move through the
// delivery flow and the callback.
type UpdateRequest struct {
	Nombre      *string  `json:"nombre"`
	Apellido    *string  `json:"apellido"`
	Cedula      *string  `json:"cedula"`
	Email       *string  `json:"email"`
	Telefono    *string  `json:"telefono"`
	Tratamiento *string  `json:"tratamiento"`
	Descripcion *string  `json:"descripcion"`
	Monto       *float64 `json:"monto"`
	ImagenURL   *string  `json:"imagen_url"`
	MetodoEnvio *string  `json:"metodo_envio"`
}

// ListFilter narrows quote listings.
type ListFilter struct {
	Estado    string
	PatientID string
	Search    string
}

// ValidMetodo reports whether m is a known delivery method.
func ValidMetodo(m string) bool {
	switch m {
	case MetodoEmail, MetodoWhatsApp, MetodoBoth:
		return true
	}
	return false
}

// Stats summarizes quotes for the dashboard.
type Stats struct {
	Total         int     `json:"total"`
	Pendientes    int     `json:"pendientes"`
	Enviados      int     `json:"enviados"`
	Aprobados     int     `json:"aprobados"`
	Rechazados    int     `json:"rechazados"`
	MontoAprobado float64 `json:"monto_aprobado"`
}
