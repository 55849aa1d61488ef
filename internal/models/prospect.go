package models

import (
	"time"

	"lovegift/internal/domain"
)

// Prospect is a captured lead. ShareToken holds the attributed share code, or nil for organic leads.
// CouponCode is set at most once and is globally unique.
type Prospect struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ListingID      uint       `gorm:"not null;uniqueIndex:idx_prospects_listing_idem,priority:1" json:"listing_id"`
	ActionType     string     `gorm:"size:20;not null" json:"action_type"`
	ShareToken     *string    `gorm:"size:32;index" json:"share_token,omitempty"`
	ProspectName   string     `gorm:"size:120;not null" json:"prospect_name"`
	ProspectMobile *string    `gorm:"size:32" json:"prospect_mobile,omitempty"`
	ProspectEmail  *string    `gorm:"size:255" json:"prospect_email,omitempty"`
	Consented      bool       `gorm:"not null;default:false" json:"consented"`
	Status         string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CouponCode     *string    `gorm:"size:32;uniqueIndex" json:"coupon_code,omitempty"`
	IdempotencyKey *string    `gorm:"size:64;uniqueIndex:idx_prospects_listing_idem,priority:2" json:"-"`
	ConvertedAt    *time.Time `json:"converted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (Prospect) TableName() string { return "prospects" }

func (p *Prospect) IsConverted() bool { return p.Status == domain.ProspectStatusConverted }
