package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShareCredit is the ledger entry written when a confirmed sale credits a share.
// A prospect can produce at most one credit.
type ShareCredit struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ShareID        uint            `gorm:"not null;index" json:"share_id"`
	ProspectID     uint            `gorm:"not null;uniqueIndex" json:"prospect_id"`
	ListingID      uint            `gorm:"not null" json:"listing_id"`
	SharerMemberID uint            `gorm:"not null;index" json:"sharer_member_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (ShareCredit) TableName() string { return "share_credits" }
