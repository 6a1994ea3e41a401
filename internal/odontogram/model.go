// Package odontogram manages the tooth-by-tooth treatment chart.
package odontogram

import (
	"strings"
	"time"
)

// Tooth zones, FDI notation.
const (
	ZoneVestibular = "vestibular"
	ZonePalatina   = "palatina"
	ZoneMesial     = "mesial"
	ZoneDistal     = "distal"
	ZoneOclusal    = "oclusal"
)

// Treatment statuses shown on the chart.
const (
	StatusHealthy     = "healthy"
	StatusCompleted   = "completed"
	StatusInTreatment = "in-treatment"
	StatusPending     = "pending"
)

// TreatmentTypes maps treatment codes to patient-facing labels. The
// vocabulary is fixed; it mirrors the clinic's price list.
var TreatmentTypes = map[string]string{
	"x_exodoncia":                        "Exodoncia",
	"l_endodoncia":                       "Endodoncia",
	"caries":                             "Relleno de zona en rojo caries",
	"restauracion_azul":                  "Relleno de zona en azul restauración",
	"o_corona":                           "Corona",
	"tratamientos":                       "Tratamientos",
	"restauracion":                       "Restauración",
	"reconstruccion":                     "Reconstrucción",
	"carillas":                           "Carillas",
	"endodoncia_monorradicular":          "Endodoncia monorradicular",
	"endodoncia_multirradicular":         "Endodoncia multirradicular",
	"endodoncia_birradicular":            "Endodoncia birradicular",
	"exodoncia_simple":                   "Exodoncia simple",
	"exodoncia_quirurgica":               "Exodoncia quirúrgica",
	"exodoncia_3ros_molares":             "Exodoncia 3ros molares",
	"protesis_total_superior":            "Prótesis total superior",
	"protesis_total_inferior":            "Prótesis total inferior",
	"protesis_parcial_acrilica_superior": "Prótesis parcial acrílica superior",
	"protesis_parcial_acrilica_inferior": "Prótesis parcial acrílica inferior",
	"protesis_parcial_flexible_superior": "Prótesis parcial flexible superior",
	"protesis_parcial_flexible_inferior": "Prótesis parcial flexible inferior",
	"protesis_metalica_superior":         "Prótesis metálica superior",
	"protesis_metalica_inferior":         "Prótesis metálica inferior",
	"corona_impresa_3d":                  "Corona impresa 3D",
	"corona_zirconio":                    "Corona zirconio",
	"incrustacion_indirecta":             "Incrustación indirecta",
	"diseno_sonrisa":                     "Diseño de sonrisa",
	"blanqueamiento":                     "Blanqueamiento",
	"tartrectomia_profilaxis":            "Tartrectomía y profilaxis",
	"frenilectomia":                      "Frenilectomía",
	"gigivectomia":                       "Gigivectomía",
	"ortodoncia":                         "Ortodoncia",
	"implante_dental":                    "Implante dental",
	"panoramica":                         "Panorámica",
	"rx_periapical":                      "Rx periapical",
	"escaneo_intraoral":                  "Escaneo intraoral",
}

// TreatmentLabel resolves a treatment code to its label, falling back to the
// code itself for unknown values.
func TreatmentLabel(code string) string {
	if label, ok := TreatmentTypes[code]; ok {
		return label
	}
	return code
}

// TreatmentImage is an attached image, stored by path with a public URL.
type TreatmentImage struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Treatment is one odontogram entry for a (tooth, zone) pair.
type Treatment struct {
	ID            string           `json:"id"`
	PatientID     string           `json:"patient_id"`
	ToothNumber   int              `json:"tooth_number"`
	ToothZone     string           `json:"tooth_zone"`
	TreatmentType string           `json:"treatment_type"`
	TreatmentDate string           `json:"treatment_date"` // "2006-01-02"
	Details       string           `json:"details,omitempty"`
	Status        string           `json:"status"`
	Images        []TreatmentImage `json:"images"`
	CreatedAt     time.Time        `json:"created_at"`
}

// CreateRequest is the payload for recording a treatment.
type CreateRequest struct {
	PatientID     string           `json:"patient_id"`
	ToothNumber   int              `json:"tooth_number"`
	ToothZone     string           `json:"tooth_zone"`
	TreatmentType string           `json:"treatment_type"`
	TreatmentDate string           `json:"treatment_date"`
	Details       string           `json:"details"`
	Status        string           `json:"status"`
	Images        []TreatmentImage `json:"images"`
}

// Validate checks required fields and the FDI tooth domain.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if !ValidToothNumber(r.ToothNumber) {
		return ErrInvalidTooth
	}
	if !validZone(r.ToothZone) {
		return ErrInvalidZone
	}
	if strings.TrimSpace(r.TreatmentType) == "" {
		return ErrMissingTreatmentType
	}
	if r.Status != "" && !validTreatmentStatus(r.Status) {
		return ErrInvalidTreatmentStatus
	}
	if r.TreatmentDate != "" {
		if _, err := time.Parse(time.DateOnly, r.TreatmentDate); err != nil {
			return ErrInvalidTreatmentDate
		}
	}
	return nil
}

// UpdateRequest carries partial treatment edits. A nil Images leaves the
// attached images untouched; only an explicit non-nil slice replaces them.
type UpdateRequest struct {
	TreatmentType *string          `json:"treatment_type"`
	TreatmentDate *string          `json:"treatment_date"`
	Details       *string          `json:"details"`
	Status        *string          `json:"status"`
	Images        []TreatmentImage `json:"images"`
}

// ValidToothNumber reports whether n is a valid FDI permanent-tooth number:
// quadrants 1-4, positions 1-8 (11-18, 21-28, 31-38, 41-48).
func ValidToothNumber(n int) bool {
	quadrant, position := n/10, n%10
	return quadrant >= 1 && quadrant <= 4 && position >= 1 && position <= 8
}

func validZone(z string) bool {
	switch z {
	case ZoneVestibular, ZonePalatina, ZoneMesial, ZoneDistal, ZoneOclusal:
		return true
	}
	return false
}

func validTreatmentStatus(s string) bool {
	switch s {
	case StatusHealthy, StatusCompleted, StatusInTreatment, StatusPending:
		return true
	}
	return false
}

// ChartTooth is the chart view of a single tooth: its most recent treatment
// decides the displayed status.
type ChartTooth struct {
	ToothNumber int        `json:"tooth_number"`
	Status      string     `json:"status"`
	Latest      *Treatment `json:"latest"`
}

// BuildChart reduces a patient's treatments to one entry per tooth,
// keeping the most recent treatment (by date, then creation time).
func BuildChart(treatments []*Treatment) []ChartTooth {
	latest := make(map[int]*Treatment)
	for _, t := range treatments {
		cur, ok := latest[t.ToothNumber]
		if !ok || newer(t, cur) {
			latest[t.ToothNumber] = t
		}
	}

	out := make([]ChartTooth, 0, len(latest))
	for tooth, t := range latest {
		out = append(out, ChartTooth{ToothNumber: tooth, Status: t.Status, Latest: t})
	}
	return out
}

func newer(a, b *Treatment) bool {
	if a.TreatmentDate != b.TreatmentDate {
		return a.TreatmentDate > b.TreatmentDate
	}
	return a.CreatedAt.After(b.CreatedAt)
}
