package waitinglist

import "errors"

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("invalid input")

	// ErrEntryNotFound is returned when an entry is absent or belongs to
	// another clinic. The two cases are indistinguishable on purpose.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidTransition is returned when a status change is not permitted
	// from the entry's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTerminalEntry is returned when a mutation is attempted on an entry
	// in a terminal status.
	ErrTerminalEntry = errors.New("entry is in a terminal status")
)

var (
	ErrMissingPatientID = validationError("patient_id is required")
	ErrMissingPetID     = validationError("pet_id is required")
	ErrMissingReason    = validationError("reason is required")
	ErrMissingClinicID  = validationError("clinic_id is required")
	ErrUnknownStatus    = validationError("unknown status")
	ErrUnknownPriority  = validationError("unknown priority")
)

type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

func (e *fieldError) Unwrap() error { return ErrValidation }

func validationError(msg string) error {
	return &fieldError{msg: msg}
}
