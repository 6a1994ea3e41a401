package patients

import "errors"

var (
	// ErrPatientNotFound is returned when a patient is not found
	ErrPatientNotFound = errors.New("patient not found")

	// ErrDuplicateCedula is returned when the cedula is already registered
	ErrDuplicateCedula = errors.New("a patient with this cedula already exists")

	ErrMissingCedula    = errors.New("cedula is required")
	ErrMissingName      = errors.New("first and last name are required")
	ErrMissingPhone     = errors.New("phone is required")
	ErrInvalidDateBirth = errors.New("date_birth must be formatted yyyy-MM-dd")
)
