package appointments

import (
	"strings"
	"time"
)

// Appointment lifecycle statuses. Cancellation is a soft delete: the row
// stays, the status alone frees the slot.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// ValidStatus reports whether s is part of the appointment status domain.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsBlocking reports whether an appointment with the given status occupies
// its slot. This is the single predicate deciding what counts against
// availability.
func IsBlocking(status string) bool {
	return status != StatusCancelled
}

// Appointment is a booked visit.
type Appointment struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	Date          string    `json:"appointment_date"` // "2006-01-02"
	StartTime     string    `json:"start_time"`       // "HH:MM"
	EndTime       string    `json:"end_time"`         // "HH:MM"
	Title         string    `json:"title"`
	TreatmentType string    `json:"treatment_type"`
	Doctor        string    `json:"doctor,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateRequest is the request body for booking an appointment.
type CreateRequest struct {
	PatientID     string `json:"patient_id"`
	Date          string `json:"appointment_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Title         string `json:"title"`
	TreatmentType string `json:"treatment_type"`
	Doctor        string `json:"doctor"`
	Notes         string `json:"notes"`
}

// Validate checks required fields and formats. Missing fields are reported,
// never silently defaulted.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if strings.TrimSpace(r.Date) == "" {
		return ErrMissingDate
	}
	if _, err := time.Parse(time.DateOnly, r.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(r.StartTime) == "" {
		return ErrMissingStartTime
	}
	if !validClock(r.StartTime) {
		return ErrInvalidTime
	}
	if r.EndTime != "" && !validClock(r.EndTime) {
		return ErrInvalidTime
	}
	if strings.TrimSpace(r.TreatmentType) == "" {
		return ErrMissingTreatment
	}
	return nil
}

// UpdateRequest carries partial appointment edits. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Date          *string `json:"appointment_date"`
	StartTime     *string `json:"start_time"`
	EndTime       *string `json:"end_time"`
	Title         *string `json:"title"`
	TreatmentType *string `json:"treatment_type"`
	Doctor        *string `json:"doctor"`
	Notes         *string `json:"notes"`
}

// ListFilter narrows appointment listings.
type ListFilter struct {
	PatientID string
	StartDate string
	EndDate   string
	Status    string
}

func validClock(hhmm string) bool {
	_, err := time.Parse("15:04", hhmm)
	return err == nil
}
