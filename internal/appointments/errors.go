package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when an appointment does not exist
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned when the requested slot overlaps a
	// non-cancelled appointment
	ErrSlotTaken = errors.New("slot already taken")

	// ErrClosedDay is returned when the requested date is not a working day
	ErrClosedDay = errors.New("clinic is closed on the requested day")

	// ErrOutsideBusinessHours is returned when the requested time falls
	// outside business hours or on an excluded hour
	ErrOutsideBusinessHours = errors.New("requested time is outside business hours")

	// ErrInvalidTimeRange is returned when start time is not before end time
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrInvalidStatus is returned on an unknown status value
	ErrInvalidStatus = errors.New("invalid appointment status")

	ErrMissingPatient   = errors.New("patient_id is required")
	ErrMissingDate      = errors.New("appointment_date is required")
	ErrMissingStartTime = errors.New("start_time is required")
	ErrMissingTreatment = errors.New("treatment_type is required")
	ErrInvalidDate      = errors.New("appointment_date must be formatted yyyy-MM-dd")
	ErrInvalidTime      = errors.New("times must be formatted HH:MM")
)
