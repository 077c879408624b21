// Package apperrors defines the domain error kinds returned by the service
// layer. Handlers map kinds to HTTP statuses at the edge.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindValidation        Kind = "VALIDATION"
	KindInvalidState      Kind = "INVALID_STATE"
	KindSlotUnavailable   Kind = "SLOT_UNAVAILABLE"
	KindDoctorNotApproved Kind = "DOCTOR_NOT_APPROVED"
	KindDoctorUnavailable Kind = "DOCTOR_UNAVAILABLE"
	KindUnauthorized      Kind = "UNAUTHORIZED"
)

// Error carries a kind plus enough context for the caller to act on.
type Error struct {
	Kind       Kind
	Message    string
	EntityID   string // the entity the operation targeted, when known
	ConflictID string // the conflicting appointment, for slot conflicts
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound reports a missing patient/doctor/appointment/user.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Message:  fmt.Sprintf("%s not found with ID: %s", entity, id),
		EntityID: id,
	}
}

// Validation reports malformed or out-of-range input.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports a transition attempted from a state that forbids it.
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// SlotUnavailable reports a booking that conflicts with an existing appointment.
func SlotUnavailable(doctorID, conflictID string) *Error {
	return &Error{
		Kind:       KindSlotUnavailable,
		Message:    fmt.Sprintf("time slot is not available: conflicts with appointment %s", conflictID),
		EntityID:   doctorID,
		ConflictID: conflictID,
	}
}

// DoctorNotApproved reports a booking attempt against an unapproved doctor.
func DoctorNotApproved(doctorID string) *Error {
	return &Error{
		Kind:     KindDoctorNotApproved,
		Message:  fmt.Sprintf("doctor %s is not approved", doctorID),
		EntityID: doctorID,
	}
}

// DoctorUnavailable reports a booking attempt against an unavailable doctor.
func DoctorUnavailable(doctorID string) *Error {
	return &Error{
		Kind:     KindDoctorUnavailable,
		Message:  fmt.Sprintf("doctor %s is not available", doctorID),
		EntityID: doctorID,
	}
}

// Unauthorized reports a caller lacking the role an operation requires.
func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or "" for non-domain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
