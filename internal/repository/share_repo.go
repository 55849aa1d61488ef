package repository

import (
	"context"
	"time"

	"lovegift/internal/domain"
	"lovegift/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) WithTx(tx *gorm.DB) *ShareRepository {
	return &ShareRepository{db: tx}
}

// GetByListingAndSharer returns the share a member holds for a listing.
func (r *ShareRepository) GetByListingAndSharer(ctx context.Context, listingID, memberID uint) (*models.Share, error) {
	var s models.Share
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND sharer_member_id = ?", listingID, memberID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShareRepository) GetByCode(ctx context.Context, code string) (*models.Share, error) {
	var s models.Share
	if err := r.db.WithContext(ctx).Where("share_code = ?", code).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a share. Unique violations on the code or on the
// (listing, sharer) pair come back as gorm.ErrDuplicatedKey.
func (r *ShareRepository) Create(ctx context.Context, s *models.Share) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ListBySharer returns a member's shares, newest first, with listings preloaded.
func (r *ShareRepository) ListBySharer(ctx context.Context, memberID uint) ([]models.Share, error) {
	var list []models.Share
	err := r.db.WithContext(ctx).
		Where("sharer_member_id = ?", memberID).
		Preload("Listing").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// MarkCredited flips a pending share to credited and stores its new earnings.
// It reports false when the share was already credited, so only one caller wins.
func (r *ShareRepository) MarkCredited(ctx context.Context, shareID uint, earned decimal.Decimal, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Share{}).
		Where("id = ? AND status <> ?", shareID, domain.ShareStatusCredited).
		Updates(map[string]interface{}{
			"status":           domain.ShareStatusCredited,
			"love_gift_earned": earned,
			"credited_at":      at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
