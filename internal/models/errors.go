package models

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotFound is returned by repositories when a requested entity is not found
	ErrNotFound        = errors.New("entity not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// Reason is a machine readable code for a rejected booking
type Reason string

const (
	ReasonInvalidTimeFormat    Reason = "INVALID_TIME_FORMAT"
	ReasonTimeOrderInvalid     Reason = "TIME_ORDER_INVALID"
	ReasonOutsideBusinessHours Reason = "OUTSIDE_BUSINESS_HOURS"
	ReasonDurationOutOfRange   Reason = "DURATION_OUT_OF_RANGE"
	ReasonRoomNotFound         Reason = "ROOM_NOT_FOUND"
	ReasonCapacityExceeded     Reason = "CAPACITY_EXCEEDED"
)

// Rejection is returned when a booking fails validation.
// Message is safe to show to the client.
type Rejection struct {
	Reason  Reason
	Message string
}

// NewRejection creates a rejection with the given reason and message
func NewRejection(reason Reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

// Is lets errors.Is(err, ErrRoomNotFound) match a room rejection
func (r *Rejection) Is(target error) bool {
	return r.Reason == ReasonRoomNotFound && target == ErrRoomNotFound
}

// AsRejection extracts a rejection from an error chain
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// InputError reports a malformed request, independent of stored state.
// Message is safe to show to the client.
type InputError struct {
	Message string
}

// NewInputError creates an input error with the given message
func NewInputError(message string) *InputError {
	return &InputError{Message: message}
}

func (e *InputError) Error() string {
	return e.Message
}
