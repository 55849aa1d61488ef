package repository

import (
	"context"

	"lovegift/internal/models"

	"gorm.io/gorm"
)

// ListingRepository is the read side of the listing collaborator plus the view counter.
type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) WithTx(tx *gorm.DB) *ListingRepository {
	return &ListingRepository{db: tx}
}

// GetByID returns the listing with its seller preloaded.
func (r *ListingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var l models.Listing
	if err := r.db.WithContext(ctx).Preload("Seller").First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// IncrementViewCount bumps view_count without touching updated_at.
func (r *ListingRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}
