package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/apperr"
	placeDomain "github.com/staynest/service-booking/internal/domain/place"
)

// PlaceModel is the GORM model for the places table. The table belongs to
// the listing service; this service reads it and never writes.
type PlaceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"size:200"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PlaceModel) TableName() string {
	return "places"
}

// GormPlaceDirectory is the GORM-backed implementation of place.Directory.
type GormPlaceDirectory struct {
	db *gorm.DB
}

// NewGormPlaceDirectory creates a new GormPlaceDirectory.
func NewGormPlaceDirectory(db *gorm.DB) *GormPlaceDirectory {
	return &GormPlaceDirectory{db: db}
}

// OwnerID returns the owning user of a place.
func (d *GormPlaceDirectory) OwnerID(ctx context.Context, placeID uuid.UUID) (uuid.UUID, error) {
	var model PlaceModel
	if err := d.db.WithContext(ctx).Select("id", "owner_id").Where("id = ?", placeID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperr.NewNotFound("place", placeID.String())
		}
		return uuid.Nil, wrapStorageErr(ctx, err)
	}
	return model.OwnerID, nil
}

// Exists reports whether the place is known.
func (d *GormPlaceDirectory) Exists(ctx context.Context, placeID uuid.UUID) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&PlaceModel{}).Where("id = ?", placeID).Count(&count).Error; err != nil {
		return false, wrapStorageErr(ctx, err)
	}
	return count > 0, nil
}

// FindByID returns the full place projection.
func (d *GormPlaceDirectory) FindByID(ctx context.Context, placeID uuid.UUID) (*placeDomain.Place, error) {
	var model PlaceModel
	if err := d.db.WithContext(ctx).Where("id = ?", placeID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("place", placeID.String())
		}
		return nil, wrapStorageErr(ctx, err)
	}
	return &placeDomain.Place{
		ID:        model.ID,
		OwnerID:   model.OwnerID,
		Title:     model.Title,
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}
