package repository

import (
	"context"

	"lovegift/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditRepository records Love Gift ledger entries.
type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) WithTx(tx *gorm.DB) *CreditRepository {
	return &CreditRepository{db: tx}
}

// Record inserts a ledger entry. A second entry for the same prospect fails
// with gorm.ErrDuplicatedKey.
func (r *CreditRepository) Record(ctx context.Context, c *models.ShareCredit) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CreditRepository) GetByProspectID(ctx context.Context, prospectID uint) (*models.ShareCredit, error) {
	var c models.ShareCredit
	if err := r.db.WithContext(ctx).Where("prospect_id = ?", prospectID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// TotalBySharer sums every credit a member has earned across listings.
func (r *CreditRepository) TotalBySharer(ctx context.Context, memberID uint) (decimal.Decimal, error) {
	var credits []models.ShareCredit
	if err := r.db.WithContext(ctx).Select("amount").Where("sharer_member_id = ?", memberID).Find(&credits).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, c := range credits {
		total = total.Add(c.Amount)
	}
	return total, nil
}
