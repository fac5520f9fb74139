// Package place exposes the listing facts the booking core consumes. Place
// records are owned by the listing service; this service only reads them.
package place

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Place is the read-only projection of a listing this service sees.
type Place struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Directory answers the two questions the booking core asks about places.
type Directory interface {
	// OwnerID returns the owning user of a place, or a NotFound error.
	OwnerID(ctx context.Context, placeID uuid.UUID) (uuid.UUID, error)

	// Exists reports whether the place is known.
	Exists(ctx context.Context, placeID uuid.UUID) (bool, error)
}
