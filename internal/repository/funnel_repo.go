package repository

import (
	"context"
	"time"

	"lovegift/internal/domain"
	"lovegift/internal/models"

	"gorm.io/gorm"
)

// EventCounts aggregates funnel events for one share code.
type EventCounts struct {
	Impressions int64
	CTAClicks   int64
}

type FunnelRepository struct {
	db *gorm.DB
}

func NewFunnelRepository(db *gorm.DB) *FunnelRepository {
	return &FunnelRepository{db: db}
}

func (r *FunnelRepository) Create(ctx context.Context, e *models.FunnelEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// CountsByShareCodes groups events by share code and type for the given codes.
// Codes without events are absent from the map.
func (r *FunnelRepository) CountsByShareCodes(ctx context.Context, codes []string) (map[string]EventCounts, error) {
	out := make(map[string]EventCounts, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	var rows []struct {
		ShareCode string
		EventType string
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&models.FunnelEvent{}).
		Select("share_code, event_type, COUNT(*) AS total").
		Where("share_code IN ?", codes).
		Group("share_code, event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := out[row.ShareCode]
		switch {
		case row.EventType == domain.EventImpression:
			c.Impressions += row.Total
		case domain.IsCTAEvent(row.EventType):
			c.CTAClicks += row.Total
		}
		out[row.ShareCode] = c
	}
	return out, nil
}

// DeleteOlderThan purges events created before cutoff and returns how many were removed.
func (r *FunnelRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.FunnelEvent{})
	return res.RowsAffected, res.Error
}
