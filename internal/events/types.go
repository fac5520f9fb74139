package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service produces to and consumes from.
const (
	TopicBookingEvents = "booking.events"
	TopicListingEvents = "listing.events"
)

// Event types on booking.events.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
)

// Event types on listing.events (produced by the listing service).
const (
	PlaceDeactivated = "place.deactivated"
)

// BookingRequestedEvent is published when a renter creates a booking request.
type BookingRequestedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PlaceID    uuid.UUID `json:"place_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when an owner confirms a booking. The
// cancelled IDs list carries the pending requests cascaded out by the confirm.
type BookingConfirmedEvent struct {
	BookingID   uuid.UUID   `json:"booking_id"`
	PlaceID     uuid.UUID   `json:"place_id"`
	RenterID    uuid.UUID   `json:"renter_id"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	CascadedIDs []uuid.UUID `json:"cascaded_booking_ids,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is rejected or cancelled.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	PlaceID     uuid.UUID `json:"place_id"`
	RenterID    uuid.UUID `json:"renter_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PlaceDeactivatedEvent arrives when the listing service takes a place off
// the market; this service cancels the place's active bookings in response.
type PlaceDeactivatedEvent struct {
	PlaceID    uuid.UUID `json:"place_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
