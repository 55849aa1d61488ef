package models

import "time"

// FunnelEvent is an append-only analytics row. ShareCode is nil for organic
// traffic and is not checked against shares.
type FunnelEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"not null;index:idx_funnel_events_listing_type,priority:1" json:"listing_id"`
	ShareCode *string   `gorm:"size:32;index" json:"share_code,omitempty"`
	EventType string    `gorm:"size:20;not null;index:idx_funnel_events_listing_type,priority:2" json:"event_type"`
	IPHash    *string   `gorm:"size:64" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (FunnelEvent) TableName() string { return "funnel_events" }
