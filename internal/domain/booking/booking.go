package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/apperr"
)

// Booking is the aggregate root for the booking domain: a reservation request
// by a renter for a place over an inclusive date range, tracked through the
// pending/confirmed/cancelled lifecycle.
type Booking struct {
	id       uuid.UUID
	placeID  uuid.UUID
	renterID uuid.UUID
	stay     DateRange
	status   Status
	message  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(placeID, renterID uuid.UUID, stay DateRange, message string) (*Booking, error) {
	if placeID == uuid.Nil {
		return nil, apperr.NewValidation("place ID is required")
	}
	if renterID == uuid.Nil {
		return nil, apperr.NewValidation("renter ID is required")
	}
	if stay.Start.IsZero() || stay.End.IsZero() {
		return nil, apperr.NewInvalidRange("start and end dates are required")
	}
	if stay.Start.After(stay.End) {
		return nil, apperr.NewInvalidRange("start date must not be after end date")
	}

	now := time.Now().UTC()
	return &Booking{
		id:        uuid.New(),
		placeID:   placeID,
		renterID:  renterID,
		stay:      stay,
		status:    StatusPending,
		message:   message,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, placeID, renterID uuid.UUID,
	stay DateRange,
	status Status,
	message string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		placeID:   placeID,
		renterID:  renterID,
		stay:      stay,
		status:    status,
		message:   message,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// PlaceID returns the booked place's identifier.
func (b *Booking) PlaceID() uuid.UUID { return b.placeID }

// RenterID returns the requesting renter's user ID.
func (b *Booking) RenterID() uuid.UUID { return b.renterID }

// Stay returns the inclusive date range of the stay.
func (b *Booking) Stay() DateRange { return b.stay }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Message returns the renter's free-text message to the owner.
func (b *Booking) Message() string { return b.message }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return apperr.NewInvalidTransition(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled. Cancelled is terminal; the
// record is never deleted so past stays stay visible to availability queries.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return apperr.NewInvalidTransition(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
