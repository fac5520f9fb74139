package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/apperr"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table. The composite index
// on (place_id, status) backs the conflict scans.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlaceID   uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_place_status,priority:1"`
	RenterID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Status    string    `gorm:"not null;size:20;index:idx_bookings_place_status,priority:2"`
	Message   string    `gorm:"size:1000"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("booking", id.String())
		}
		return nil, wrapStorageErr(ctx, err)
	}
	return toDomainBooking(&model)
}

// FindByPlace retrieves all bookings for a place, optionally filtered by
// status, ordered by stay start date.
func (r *GormBookingRepository) FindByPlace(ctx context.Context, placeID uuid.UUID, statuses ...bookingDomain.Status) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).Where("place_id = ?", placeID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(statuses))
	}

	var models []BookingModel
	if err := query.Order("start_date ASC, created_at ASC").Find(&models).Error; err != nil {
		return nil, wrapStorageErr(ctx, err)
	}
	return toDomainBookings(models)
}

// FindByRenter retrieves bookings made by a renter with pagination.
func (r *GormBookingRepository) FindByRenter(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("renter_id = ?", renterID).Count(&total).Error; err != nil {
		return nil, 0, wrapStorageErr(ctx, err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, wrapStorageErr(ctx, err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, wrapStorageErr(ctx, err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, wrapStorageErr(ctx, err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, wrapStorageErr(ctx, err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return wrapStorageErr(ctx, err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
// The version guard is a second line of defence behind the place lock.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"message":    model.Message,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return wrapStorageErr(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewConflict("booking was modified by another transaction")
	}
	return nil
}

// InPlaceTx serializes fn against all other InPlaceTx calls for the same
// place using a transaction-scoped Postgres advisory lock keyed on the place
// ID. The lock is released when the transaction commits or rolls back;
// different places do not contend.
func (r *GormBookingRepository) InPlaceTx(ctx context.Context, placeID uuid.UUID, fn func(tx bookingDomain.Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", placeID.String()).Error; err != nil {
			return wrapStorageErr(ctx, err)
		}
		return fn(&GormBookingRepository{db: tx})
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return wrapStorageErr(ctx, err)
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		PlaceID:   bk.PlaceID(),
		RenterID:  bk.RenterID(),
		StartDate: bk.Stay().Start,
		EndDate:   bk.Stay().End,
		Status:    string(bk.Status()),
		Message:   bk.Message(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	stay, err := bookingDomain.NewDateRange(m.StartDate, m.EndDate)
	if err != nil {
		return nil, err
	}
	return bookingDomain.Reconstruct(
		m.ID,
		m.PlaceID,
		m.RenterID,
		stay,
		status,
		m.Message,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func statusStrings(statuses []bookingDomain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// wrapStorageErr converts driver errors into the typed kinds the core
// surfaces: Timeout when the context expired, RepositoryUnavailable otherwise.
func wrapStorageErr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return apperr.NewTimeout("storage operation timed out")
	}
	return apperr.NewUnavailable(err)
}
