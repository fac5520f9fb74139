package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/apperr"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// MemoryBookingRepository is an embedded implementation of booking.Repository
// backed by a map, with a mutex keyed by place ID standing in for the
// per-place serialization boundary. Suitable for tests and single-process
// deployments without Postgres.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*bookingDomain.Booking

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

// NewMemoryBookingRepository creates an empty in-memory repository.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		locks:    make(map[uuid.UUID]chan struct{}),
	}
}

// FindByID retrieves a booking by its unique identifier.
func (r *MemoryBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bk, ok := r.bookings[id]
	if !ok {
		return nil, apperr.NewNotFound("booking", id.String())
	}
	return cloneBooking(bk), nil
}

// FindByPlace retrieves all bookings for a place, optionally filtered by
// status, ordered by stay start date.
func (r *MemoryBookingRepository) FindByPlace(ctx context.Context, placeID uuid.UUID, statuses ...bookingDomain.Status) ([]*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.PlaceID() != placeID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, bk.Status()) {
			continue
		}
		result = append(result, cloneBooking(bk))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Stay().Start.Equal(result[j].Stay().Start) {
			return result[i].Stay().Start.Before(result[j].Stay().Start)
		}
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, nil
}

// FindByRenter retrieves bookings made by a renter with pagination.
func (r *MemoryBookingRepository) FindByRenter(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.RenterID() == renterID {
			all = append(all, cloneBooking(bk))
		}
	}
	return paginateNewestFirst(all, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *MemoryBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		all = append(all, cloneBooking(bk))
	}
	return paginateNewestFirst(all, page, limit)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *MemoryBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

// Save persists a new booking.
func (r *MemoryBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[bk.ID()]; exists {
		return apperr.NewConflict("booking already exists")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *MemoryBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return apperr.NewNotFound("booking", bk.ID().String())
	}
	if stored.Version() != bk.Version()-1 {
		return apperr.NewConflict("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

// InPlaceTx serializes fn against other InPlaceTx calls for the same place
// using a keyed mutex. Acquisition is bounded by ctx; expiry surfaces as a
// Timeout error so callers can retry safely.
func (r *MemoryBookingRepository) InPlaceTx(ctx context.Context, placeID uuid.UUID, fn func(tx bookingDomain.Repository) error) error {
	lock := r.placeLock(placeID)
	select {
	case lock <- struct{}{}:
		defer func() { <-lock }()
	case <-ctx.Done():
		return apperr.NewTimeout("timed out waiting for place lock")
	}
	return fn(r)
}

// placeLock returns the binary semaphore for a place, creating it on first use.
func (r *MemoryBookingRepository) placeLock(placeID uuid.UUID) chan struct{} {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	lock, ok := r.locks[placeID]
	if !ok {
		lock = make(chan struct{}, 1)
		r.locks[placeID] = lock
	}
	return lock
}

func cloneBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		bk.ID(),
		bk.PlaceID(),
		bk.RenterID(),
		bk.Stay(),
		bk.Status(),
		bk.Message(),
		bk.Version(),
		bk.CreatedAt(),
		bk.UpdatedAt(),
	)
}

func containsStatus(statuses []bookingDomain.Status, s bookingDomain.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func paginateNewestFirst(all []*bookingDomain.Booking, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt().After(all[j].CreatedAt())
	})

	total := int64(len(all))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []*bookingDomain.Booking{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
