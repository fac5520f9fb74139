package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByPlace retrieves all bookings for a place, optionally filtered to
	// the given statuses. No pagination: conflict scans need the full set of
	// active bookings for a place.
	FindByPlace(ctx context.Context, placeID uuid.UUID, statuses ...Status) ([]*Booking, error)

	// FindByRenter retrieves bookings made by a specific renter with pagination.
	FindByRenter(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// InPlaceTx runs fn inside the serialization boundary for one place: all
	// reads and writes fn performs through the passed Repository are atomic
	// with respect to other InPlaceTx calls on the same place. Calls on
	// different places proceed in parallel. Returns a Timeout error when the
	// boundary cannot be entered before ctx expires.
	InPlaceTx(ctx context.Context, placeID uuid.UUID, fn func(tx Repository) error) error
}
