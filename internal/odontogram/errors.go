package odontogram

import "errors"

var (
	ErrTreatmentNotFound      = errors.New("odontogram: treatment not found")
	ErrDuplicateZone          = errors.New("odontogram: treatment already recorded for this tooth and zone")
	ErrMissingPatient         = errors.New("odontogram: patient_id is required")
	ErrInvalidTooth           = errors.New("odontogram: tooth_number must be a valid FDI number (11-18, 21-28, 31-38, 41-48)")
	ErrInvalidZone            = errors.New("odontogram: tooth_zone must be vestibular, palatina, mesial, distal or oclusal")
	ErrMissingTreatmentType   = errors.New("odontogram: treatment_type is required")
	ErrInvalidTreatmentStatus = errors.New("odontogram: status must be healthy, completed, in-treatment or pending")
	ErrInvalidTreatmentDate   = errors.New("odontogram: treatment_date must use YYYY-MM-DD format")
)
