package models

import (
	"time"

	"lovegift/internal/domain"

	"github.com/shopspring/decimal"
)

// Share is one member's referral code for one listing.
// (ListingID, SharerMemberID) is unique; LoveGiftEarned only grows through sale confirmation.
type Share struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ListingID      uint            `gorm:"not null;uniqueIndex:idx_shares_listing_sharer,priority:1" json:"listing_id"`
	SharerMemberID uint            `gorm:"not null;uniqueIndex:idx_shares_listing_sharer,priority:2;index" json:"sharer_member_id"`
	ShareCode      string          `gorm:"uniqueIndex;size:32;not null" json:"share_code"`
	Status         string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	LoveGiftEarned decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"love_gift_earned"`
	CreditedAt     *time.Time      `json:"credited_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
	Sharer  Member  `gorm:"foreignKey:SharerMemberID" json:"-"`
}

func (Share) TableName() string { return "shares" }

func (s *Share) IsCredited() bool { return s.Status == domain.ShareStatusCredited }
