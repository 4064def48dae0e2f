// Package apperr holds the error kinds shared by the booking and training
// services and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/capacity"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrCapacityExceeded   = capacity.ErrCapacityExceeded
	ErrInvalidDate        = errors.New("date is in the past or not a valid occurrence")
	ErrInvalidBookingType = errors.New("invalid booking type for this class")
	ErrEmptyReason        = errors.New("reason is required")
	ErrConflictingUpdate  = errors.New("entity was modified concurrently, re-read and retry")
	ErrClassNotFound      = errors.New("class not found")
	ErrEntityNotFound     = errors.New("entity not found")

	ErrClassNotActive   = errors.New("class is not active")
	ErrDuplicateBooking = errors.New("athlete already has a booking for this occurrence")
	ErrMissingSchedule  = errors.New("scheduled date and time window are required")
	ErrScheduleConflict = errors.New("coach already has a session in this time window")
	ErrInvalidInput     = errors.New("invalid input")
)

// HTTPStatus maps an error returned by a service to a response code.
// Unknown errors are internal.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrClassNotFound), errors.Is(err, ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrConflictingUpdate),
		errors.Is(err, ErrDuplicateBooking),
		errors.Is(err, ErrScheduleConflict),
		errors.Is(err, ErrClassNotActive):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidBookingType),
		errors.Is(err, ErrEmptyReason),
		errors.Is(err, ErrMissingSchedule),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable kind sent to clients next to the message.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrInvalidBookingType):
		return "invalid_booking_type"
	case errors.Is(err, ErrEmptyReason):
		return "empty_reason"
	case errors.Is(err, ErrConflictingUpdate):
		return "conflicting_update"
	case errors.Is(err, ErrClassNotFound):
		return "class_not_found"
	case errors.Is(err, ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, ErrClassNotActive):
		return "class_not_active"
	case errors.Is(err, ErrDuplicateBooking):
		return "duplicate_booking"
	case errors.Is(err, ErrMissingSchedule):
		return "missing_schedule"
	case errors.Is(err, ErrScheduleConflict):
		return "schedule_conflict"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
