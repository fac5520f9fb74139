// Package apperr defines the typed error kinds the booking core returns to
// its callers. The HTTP layer maps kinds to status codes; the core itself
// never inspects messages, only kinds.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindInvalidRange      Kind = "invalid_range"
	KindSelfBooking       Kind = "self_booking"
	KindConflict          Kind = "conflicting_booking"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidTransition Kind = "invalid_transition"
	KindTimeout           Kind = "timeout"
	KindUnavailable       Kind = "repository_unavailable"
	KindValidation        Kind = "validation"
)

// Error is a typed application error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by kind so sentinel comparisons work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// NewInvalidRange reports an invalid date range.
func NewInvalidRange(message string) *Error {
	return &Error{Kind: KindInvalidRange, Message: message}
}

// NewSelfBooking reports an attempt by an owner to book their own place.
func NewSelfBooking(message string) *Error {
	return &Error{Kind: KindSelfBooking, Message: message}
}

// NewConflict reports a booking that overlaps an existing active booking.
func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewNotFound reports a missing resource by type and identifier.
func NewNotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

// NewUnauthorized reports an action attempted by a user without rights to it.
func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewInvalidTransition reports a status transition the state machine forbids.
func NewInvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("invalid transition from %s to %s", from, to),
	}
}

// NewTimeout reports that a serialization boundary could not be entered in time.
func NewTimeout(message string) *Error {
	return &Error{Kind: KindTimeout, Message: message}
}

// NewUnavailable wraps an underlying storage failure.
func NewUnavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "storage unavailable", Err: err}
}

// NewValidation reports a generic input validation failure.
func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of err, or "" if err is not an application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
