package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/apperr"
	"github.com/staynest/service-booking/internal/domain/booking"
	"github.com/staynest/service-booking/internal/domain/place"
	"github.com/staynest/service-booking/internal/events"
)

const dateLayout = "2006-01-02"

// EventPublisher publishes CloudEvents; satisfied by *events.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event events.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking request.
type CreateBookingRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Message   string `json:"message"`
}

// ConfirmRequest identifies the booking to confirm and who is acting.
// Only the status can change through a confirm; no other field is writable.
type ConfirmRequest struct {
	BookingID    uuid.UUID
	ActingUserID uuid.UUID
}

// RejectRequest identifies the booking to reject and who is acting.
type RejectRequest struct {
	BookingID    uuid.UUID
	ActingUserID uuid.UUID
	Reason       string
}

// BookingDTO is the full response representation of a booking, visible to the
// place owner, the renter and admins.
type BookingDTO struct {
	ID        uuid.UUID `json:"id"`
	PlaceID   uuid.UUID `json:"place_id"`
	RenterID  uuid.UUID `json:"renter_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StayWindowDTO is the availability projection of a confirmed booking:
// dates only, no renter identity, no message.
type StayWindowDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PlaceCalendarDTO is the result of listing a place's bookings. Owners get
// the full booking list; everyone else gets only confirmed stay windows.
type PlaceCalendarDTO struct {
	PlaceID   uuid.UUID       `json:"place_id"`
	IsOwner   bool            `json:"-"`
	Bookings  []BookingDTO    `json:"bookings,omitempty"`
	Confirmed []StayWindowDTO `json:"confirmed_stays,omitempty"`
}

// BookingService orchestrates the booking lifecycle: admission of new
// requests, owner confirmation with conflict re-checks and cascade
// cancellation, rejection, and the owner/renter/availability read paths.
type BookingService struct {
	repo      booking.Repository
	places    place.Directory
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo booking.Repository,
	places place.Directory,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		places:    places,
		publisher: publisher,
		logger:    logger,
	}
}

// Create admits a new booking request for a place. The conflict check and the
// insert run inside the place's serialization boundary so two concurrent
// requests for overlapping dates cannot both get in. Pending bookings block
// new requests just like confirmed ones: a pending request is a soft hold on
// its dates until the owner decides.
func (s *BookingService) Create(ctx context.Context, placeID, renterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	stay, err := booking.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.places.OwnerID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if ownerID == renterID {
		return nil, apperr.NewSelfBooking("you cannot book your own place")
	}

	var created *booking.Booking
	err = s.repo.InPlaceTx(ctx, placeID, func(tx booking.Repository) error {
		active, err := tx.FindByPlace(ctx, placeID, booking.ActiveStatuses...)
		if err != nil {
			return err
		}
		if booking.HasConflict(stay, active, booking.ActiveStatuses...) {
			return apperr.NewConflict("requested dates are not available")
		}

		bk, err := booking.NewBooking(placeID, renterID, stay, req.Message)
		if err != nil {
			return err
		}
		if err := tx.Save(ctx, bk); err != nil {
			return err
		}
		created = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingRequested(ctx, created, ownerID)

	result := toBookingDTO(created)
	return &result, nil
}

// Confirm transitions a pending booking to confirmed. Only the place owner
// may confirm. The conflict re-check against confirmed bookings and the
// cascade cancellation of overlapping pending requests happen inside the
// same serialization boundary as the status write, closing the race where
// two overlapping pending bookings are confirmed concurrently.
//
// Confirming an already-confirmed booking is a no-op success so retries
// after a timeout stay safe.
func (s *BookingService) Confirm(ctx context.Context, req ConfirmRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, bk.PlaceID(), req.ActingUserID); err != nil {
		return nil, err
	}

	var (
		confirmed    *booking.Booking
		cascaded     []*booking.Booking
		transitioned bool
	)
	err = s.repo.InPlaceTx(ctx, bk.PlaceID(), func(tx booking.Repository) error {
		cur, err := tx.FindByID(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if cur.Status() == booking.StatusConfirmed {
			// Retried confirm of an already-confirmed booking: no-op success.
			confirmed = cur
			return nil
		}

		others, err := tx.FindByPlace(ctx, cur.PlaceID(), booking.StatusConfirmed)
		if err != nil {
			return err
		}
		if booking.HasConflict(cur.Stay(), others, booking.StatusConfirmed) {
			return apperr.NewConflict("an overlapping booking was already confirmed")
		}

		if err := cur.Confirm(); err != nil {
			return err
		}
		cur.IncrementVersion()
		if err := tx.Update(ctx, cur); err != nil {
			return err
		}

		pending, err := tx.FindByPlace(ctx, cur.PlaceID(), booking.StatusPending)
		if err != nil {
			return err
		}
		for _, other := range booking.FindConflicting(cur.Stay(), pending, booking.StatusPending) {
			if other.ID() == cur.ID() {
				continue
			}
			if err := other.Cancel(); err != nil {
				return err
			}
			other.IncrementVersion()
			if err := tx.Update(ctx, other); err != nil {
				return err
			}
			cascaded = append(cascaded, other)
		}

		confirmed = cur
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.publishBookingConfirmed(ctx, confirmed, cascaded)
	}

	result := toBookingDTO(confirmed)
	return &result, nil
}

// Reject transitions a booking to cancelled. Only the place owner may reject.
// Allowed from pending and from confirmed (an owner revoking a confirmed
// stay); cancelling frees the dates but resurrects nothing.
func (s *BookingService) Reject(ctx context.Context, req RejectRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, bk.PlaceID(), req.ActingUserID); err != nil {
		return nil, err
	}

	var rejected *booking.Booking
	err = s.repo.InPlaceTx(ctx, bk.PlaceID(), func(tx booking.Repository) error {
		cur, err := tx.FindByID(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if err := cur.Cancel(); err != nil {
			return err
		}
		cur.IncrementVersion()
		if err := tx.Update(ctx, cur); err != nil {
			return err
		}
		rejected = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingCancelled(ctx, rejected, req.ActingUserID, req.Reason)

	result := toBookingDTO(rejected)
	return &result, nil
}

// ListForPlace returns a place's bookings. The owner sees every booking with
// full fields; anyone else, including anonymous callers, sees only confirmed
// stay windows (the availability view). Pass uuid.Nil for anonymous callers.
func (s *BookingService) ListForPlace(ctx context.Context, placeID, actingUserID uuid.UUID) (*PlaceCalendarDTO, error) {
	ownerID, err := s.places.OwnerID(ctx, placeID)
	if err != nil {
		return nil, err
	}

	if actingUserID != uuid.Nil && actingUserID == ownerID {
		bookings, err := s.repo.FindByPlace(ctx, placeID)
		if err != nil {
			return nil, err
		}
		dtos := make([]BookingDTO, len(bookings))
		for i, bk := range bookings {
			dtos[i] = toBookingDTO(bk)
		}
		return &PlaceCalendarDTO{PlaceID: placeID, IsOwner: true, Bookings: dtos}, nil
	}

	confirmed, err := s.repo.FindByPlace(ctx, placeID, booking.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	windows := make([]StayWindowDTO, len(confirmed))
	for i, bk := range confirmed {
		windows[i] = StayWindowDTO{
			StartDate: bk.Stay().Start.Format(dateLayout),
			EndDate:   bk.Stay().End.Format(dateLayout),
		}
	}
	return &PlaceCalendarDTO{PlaceID: placeID, Confirmed: windows}, nil
}

// Availability returns the public availability view for a place: the
// confirmed stay windows and nothing else.
func (s *BookingService) Availability(ctx context.Context, placeID uuid.UUID) ([]StayWindowDTO, error) {
	calendar, err := s.ListForPlace(ctx, placeID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return calendar.Confirmed, nil
}

// ListForRenter returns the renter's own bookings across all places.
func (s *BookingService) ListForRenter(ctx context.Context, renterID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.FindByRenter(ctx, renterID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBooking retrieves a single booking. Visible to the renter who made it
// and to the place owner.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actingUserID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.RenterID() != actingUserID {
		if err := s.requireOwner(ctx, bk.PlaceID(), actingUserID); err != nil {
			return nil, err
		}
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking counts for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// CancelAllForPlace cancels every active booking for a place. Invoked when
// the listing service deactivates a place.
func (s *BookingService) CancelAllForPlace(ctx context.Context, placeID uuid.UUID, reason string) (int, error) {
	var cancelled []*booking.Booking
	err := s.repo.InPlaceTx(ctx, placeID, func(tx booking.Repository) error {
		active, err := tx.FindByPlace(ctx, placeID, booking.ActiveStatuses...)
		if err != nil {
			return err
		}
		for _, bk := range active {
			if err := bk.Cancel(); err != nil {
				return err
			}
			bk.IncrementVersion()
			if err := tx.Update(ctx, bk); err != nil {
				return err
			}
			cancelled = append(cancelled, bk)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, bk := range cancelled {
		s.publishBookingCancelled(ctx, bk, uuid.Nil, reason)
	}
	return len(cancelled), nil
}

// --- Helpers ---

// requireOwner fails with Unauthorized unless actingUserID owns the place.
func (s *BookingService) requireOwner(ctx context.Context, placeID, actingUserID uuid.UUID) error {
	ownerID, err := s.places.OwnerID(ctx, placeID)
	if err != nil {
		return err
	}
	if ownerID != actingUserID {
		return apperr.NewUnauthorized("only the place owner may manage its bookings")
	}
	return nil
}

func toBookingDTO(bk *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:        bk.ID(),
		PlaceID:   bk.PlaceID(),
		RenterID:  bk.RenterID(),
		StartDate: bk.Stay().Start.Format(dateLayout),
		EndDate:   bk.Stay().End.Format(dateLayout),
		Status:    string(bk.Status()),
		Message:   bk.Message(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *booking.Booking, ownerID uuid.UUID) {
	evt := events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		PlaceID:    bk.PlaceID(),
		OwnerID:    ownerID,
		RenterID:   bk.RenterID(),
		StartDate:  bk.Stay().Start.Format(dateLayout),
		EndDate:    bk.Stay().End.Format(dateLayout),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, bk.ID().String(), evt)
}

func (s *BookingService) publishBookingConfirmed(ctx context.Context, bk *booking.Booking, cascaded []*booking.Booking) {
	cascadedIDs := make([]uuid.UUID, len(cascaded))
	for i, other := range cascaded {
		cascadedIDs[i] = other.ID()
	}
	evt := events.BookingConfirmedEvent{
		BookingID:   bk.ID(),
		PlaceID:     bk.PlaceID(),
		RenterID:    bk.RenterID(),
		StartDate:   bk.Stay().Start.Format(dateLayout),
		EndDate:     bk.Stay().End.Format(dateLayout),
		CascadedIDs: cascadedIDs,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingConfirmed, bk.ID().String(), evt)
}

func (s *BookingService) publishBookingCancelled(ctx context.Context, bk *booking.Booking, cancelledBy uuid.UUID, reason string) {
	evt := events.BookingCancelledEvent{
		BookingID:   bk.ID(),
		PlaceID:     bk.PlaceID(),
		RenterID:    bk.RenterID(),
		CancelledBy: cancelledBy,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}
	cloudEvent, err := events.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
