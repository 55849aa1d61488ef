package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lovegift/internal/domain"
	"lovegift/internal/models"
	"lovegift/internal/repository"
	"lovegift/pkg/iphash"
)

// EventInput is one funnel observation. ShareCode and ClientIP are optional.
type EventInput struct {
	ListingID uint
	ShareCode string
	EventType string
	ClientIP  string
}

// FunnelStats aggregates a share's funnel.
type FunnelStats struct {
	ShareCode     string `json:"share_code"`
	Impressions   int64  `json:"impressions"`
	CTAClicks     int64  `json:"cta_clicks"`
	ProspectCount int64  `json:"prospect_count"`
}

// FunnelService is the best-effort analytics path. Writes never fail the caller
// and never run inside a prospect or crediting transaction.
type FunnelService struct {
	listingRepo  *repository.ListingRepository
	funnelRepo   *repository.FunnelRepository
	prospectRepo *repository.ProspectRepository
	hasher       *iphash.Hasher
	timeout      time.Duration
	wg           sync.WaitGroup
	log          *slog.Logger
}

func NewFunnelService(
	listingRepo *repository.ListingRepository,
	funnelRepo *repository.FunnelRepository,
	prospectRepo *repository.ProspectRepository,
	hasher *iphash.Hasher,
	timeout time.Duration,
) *FunnelService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &FunnelService{
		listingRepo:  listingRepo,
		funnelRepo:   funnelRepo,
		prospectRepo: prospectRepo,
		hasher:       hasher,
		timeout:      timeout,
		log:          slog.Default().With("component", "funnel"),
	}
}

// RecordEvent stores the event, logging and swallowing any failure.
func (s *FunnelService) RecordEvent(ctx context.Context, in EventInput) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if !domain.IsFunnelEvent(in.EventType) {
		s.log.WarnContext(ctx, "dropping unknown funnel event", "event_type", in.EventType, "listing_id", in.ListingID)
		return
	}
	ok, err := s.listingRepo.Exists(ctx, in.ListingID)
	if err != nil {
		s.log.WarnContext(ctx, "funnel listing lookup failed", "listing_id", in.ListingID, "error", err)
		return
	}
	if !ok {
		s.log.WarnContext(ctx, "dropping funnel event for unknown listing", "listing_id", in.ListingID)
		return
	}
	e := &models.FunnelEvent{ListingID: in.ListingID, EventType: in.EventType}
	if code := strings.TrimSpace(in.ShareCode); code != "" {
		e.ShareCode = &code
	}
	if s.hasher != nil {
		if h := s.hasher.Hash(in.ClientIP); h != "" {
			e.IPHash = &h
		}
	}
	if err := s.funnelRepo.Create(ctx, e); err != nil {
		s.log.WarnContext(ctx, "funnel event write failed", "listing_id", in.ListingID, "event_type", in.EventType, "error", err)
		return
	}
	if in.EventType == domain.EventImpression {
		if err := s.listingRepo.IncrementViewCount(ctx, in.ListingID); err != nil {
			s.log.WarnContext(ctx, "view count increment failed", "listing_id", in.ListingID, "error", err)
		}
	}
}

// RecordEventAsync records the event in the background, detached from the request.
func (s *FunnelService) RecordEventAsync(ctx context.Context, in EventInput) {
	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RecordEvent(detached, in)
	}()
}

// Wait blocks until background writes have finished.
func (s *FunnelService) Wait() {
	s.wg.Wait()
}

// GetFunnelStats aggregates impressions, CTA clicks and prospects for a share code.
func (s *FunnelService) GetFunnelStats(ctx context.Context, shareCode string) (FunnelStats, error) {
	events, err := s.funnelRepo.CountsByShareCodes(ctx, []string{shareCode})
	if err != nil {
		return FunnelStats{}, err
	}
	prospects, err := s.prospectRepo.CountByShareTokens(ctx, []string{shareCode})
	if err != nil {
		return FunnelStats{}, err
	}
	c := events[shareCode]
	return FunnelStats{
		ShareCode:     shareCode,
		Impressions:   c.Impressions,
		CTAClicks:     c.CTAClicks,
		ProspectCount: prospects[shareCode],
	}, nil
}

// PurgeOlderThan removes events older than age.
func (s *FunnelService) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return s.funnelRepo.DeleteOlderThan(ctx, time.Now().Add(-age))
}
