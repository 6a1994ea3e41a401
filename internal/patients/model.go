package patients

import (
	"strings"
	"time"
)

// Patient is a clinic patient record.
type Patient struct {
	ID                string    `json:"id"`
	Cedula            string    `json:"cedula"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	DateBirth         string    `json:"date_birth,omitempty"` // "2006-01-02"
	Gender            string    `json:"gender,omitempty"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email,omitempty"`
	Address           string    `json:"address,omitempty"`
	Occupation        string    `json:"occupation,omitempty"`
	BloodType         string    `json:"blood_type,omitempty"`
	ChronicDiseases   string    `json:"chronic_diseases,omitempty"`
	Medications       string    `json:"medications,omitempty"`
	Allergies         string    `json:"allergies,omitempty"`
	Pregnant          bool      `json:"pregnant"`
	ContagiousDisease string    `json:"contagious_disease,omitempty"`
	Status            string    `json:"status,omitempty"` // UI grouping tag only
	CreatedAt         time.Time `json:"created_at"`
}

// CreateRequest is the intake form payload.
type CreateRequest struct {
	Cedula            string `json:"cedula"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	DateBirth         string `json:"date_birth"`
	Gender            string `json:"gender"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Address           string `json:"address"`
	Occupation        string `json:"occupation"`
	BloodType         string `json:"blood_type"`
	ChronicDiseases   string `json:"chronic_diseases"`
	Medications       string `json:"medications"`
	Allergies         string `json:"allergies"`
	Pregnant          bool   `json:"pregnant"`
	ContagiousDisease string `json:"contagious_disease"`
	Status            string `json:"status"`
}

// Validate validates the intake form.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Cedula) == "" {
		return ErrMissingCedula
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingPhone
	}
	if r.DateBirth != "" {
		if _, err := time.Parse(time.DateOnly, r.DateBirth); err != nil {
			return ErrInvalidDateBirth
		}
	}
	return nil
}

// UpdateRequest carries partial patient edits. Nil fields are left unchanged.
type UpdateRequest struct {
	Cedula            *string `json:"cedula"`
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	DateBirth         *string `json:"date_birth"`
	Gender            *string `json:"gender"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	Address           *string `json:"address"`
	Occupation        *string `json:"occupation"`
	BloodType         *string `json:"blood_type"`
	ChronicDiseases   *string `json:"chronic_diseases"`
	Medications       *string `json:"medications"`
	Allergies         *string `json:"allergies"`
	Pregnant          *bool   `json:"pregnant"`
	ContagiousDisease *string `json:"contagious_disease"`
	Status            *string `json:"status"`
}
