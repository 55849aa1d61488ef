package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Member is the marketplace account, owned by the member directory.
// The referral engine only reads it for names and ownership checks.
type Member struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	DisplayName string         `gorm:"size:120;not null;default:''" json:"display_name"`
	Email       string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string { return "members" }

// Name returns the display name, falling back to the local part of the email.
func (m *Member) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	if i := strings.IndexByte(m.Email, '@'); i > 0 {
		return m.Email[:i]
	}
	return m.Email
}
