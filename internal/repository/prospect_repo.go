package repository

import (
	"context"
	"time"

	"lovegift/internal/domain"
	"lovegift/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProspectRepository struct {
	db *gorm.DB
}

func NewProspectRepository(db *gorm.DB) *ProspectRepository {
	return &ProspectRepository{db: db}
}

func (r *ProspectRepository) WithTx(tx *gorm.DB) *ProspectRepository {
	return &ProspectRepository{db: tx}
}

func (r *ProspectRepository) Create(ctx context.Context, p *models.Prospect) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProspectRepository) GetByID(ctx context.Context, id uint) (*models.Prospect, error) {
	var p models.Prospect
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetForUpdate reads a prospect with a row lock. Drivers without row locks
// (SQLite) ignore the clause; MarkConverted still guards the transition.
func (r *ProspectRepository) GetForUpdate(ctx context.Context, id uint) (*models.Prospect, error) {
	var p models.Prospect
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProspectRepository) GetByIdempotencyKey(ctx context.Context, listingID uint, key string) (*models.Prospect, error) {
	var p models.Prospect
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND idempotency_key = ?", listingID, key).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByListing returns a listing's prospects, newest first.
func (r *ProspectRepository) ListByListing(ctx context.Context, listingID uint) ([]models.Prospect, error) {
	var list []models.Prospect
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// UpdateStatus changes a non-converted prospect's status. It reports false when
// the prospect is missing, belongs to another listing or is already converted.
func (r *ProspectRepository) UpdateStatus(ctx context.Context, listingID, id uint, status string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Prospect{}).
		Where("id = ? AND listing_id = ? AND status <> ?", id, listingID, domain.ProspectStatusConverted).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkConverted is the compare-and-set from any status to converted.
// Only one caller ever sees true for a given prospect.
func (r *ProspectRepository) MarkConverted(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Prospect{}).
		Where("id = ? AND status <> ?", id, domain.ProspectStatusConverted).
		Updates(map[string]interface{}{
			"status":       domain.ProspectStatusConverted,
			"converted_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountByShareTokens returns the number of prospects attributed to each code.
func (r *ProspectRepository) CountByShareTokens(ctx context.Context, codes []string) (map[string]int64, error) {
	out := make(map[string]int64, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	var rows []struct {
		ShareToken string
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Prospect{}).
		Select("share_token, COUNT(*) AS total").
		Where("share_token IN ?", codes).
		Group("share_token").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ShareToken] = row.Total
	}
	return out, nil
}
