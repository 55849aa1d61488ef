package models

import (
	"time"

	"lovegift/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing is owned by the listing collaborator. The referral engine reads the
// price fields and the Love Gift, and only ever writes ViewCount.
type Listing struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	SellerID        uint             `gorm:"not null;index" json:"seller_id"`
	Title           string           `gorm:"size:200;not null" json:"title"`
	OgPrice         *decimal.Decimal `gorm:"type:decimal(12,2)" json:"og_price"`
	DiscountedPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"-"` // only leaves through a ProspectResult
	LoveGiftAmount  decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"love_gift_amount"`
	Status          string           `gorm:"size:20;not null;default:'active';index" json:"status"`
	ViewCount       int64            `gorm:"not null;default:0" json:"view_count"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`

	Seller Member `gorm:"foreignKey:SellerID" json:"-"`
}

func (Listing) TableName() string { return "listings" }

// HasDiscount is true only when both prices are set and the discount is real.
func (l *Listing) HasDiscount() bool {
	return l.DiscountedPrice != nil && l.OgPrice != nil && l.DiscountedPrice.LessThan(*l.OgPrice)
}

func (l *Listing) IsActive() bool { return l.Status == domain.ListingStatusActive }
