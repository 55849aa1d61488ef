package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"lovegift/internal/domain"
	"lovegift/internal/models"
	"lovegift/internal/repository"
	"lovegift/pkg/codegen"

	"github.com/shopspring/decimal"
)

// ShareService issues referral codes and builds the sharer dashboard.
type ShareService struct {
	listingRepo  *repository.ListingRepository
	memberRepo   *repository.MemberRepository
	shareRepo    *repository.ShareRepository
	funnelRepo   *repository.FunnelRepository
	prospectRepo *repository.ProspectRepository
	creditRepo   *repository.CreditRepository
	baseURL      string
	attempts     int
	newCode      func(name string) (string, error)
	log          *slog.Logger
}

func NewShareService(
	listingRepo *repository.ListingRepository,
	memberRepo *repository.MemberRepository,
	shareRepo *repository.ShareRepository,
	funnelRepo *repository.FunnelRepository,
	prospectRepo *repository.ProspectRepository,
	creditRepo *repository.CreditRepository,
	baseURL string,
	attempts int,
) *ShareService {
	if attempts < 1 {
		attempts = 1
	}
	return &ShareService{
		listingRepo:  listingRepo,
		memberRepo:   memberRepo,
		shareRepo:    shareRepo,
		funnelRepo:   funnelRepo,
		prospectRepo: prospectRepo,
		creditRepo:   creditRepo,
		baseURL:      baseURL,
		attempts:     attempts,
		newCode:      codegen.ShareCode,
		log:          slog.Default().With("component", "share"),
	}
}

// GetOrCreateShare returns the member's share for a listing, creating it on first request.
func (s *ShareService) GetOrCreateShare(ctx context.Context, listingID, memberID uint) (*models.Share, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load listing: %v", domain.ErrRetryable, err)
	}
	if !listing.IsActive() {
		return nil, domain.ErrNotFound
	}
	if listing.SellerID == memberID {
		return nil, domain.ErrSelfReferral
	}
	if existing, err := s.shareRepo.GetByListingAndSharer(ctx, listingID, memberID); err == nil {
		return existing, nil
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: load share: %v", domain.ErrRetryable, err)
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load member: %v", domain.ErrRetryable, err)
	}

	for i := 0; i < s.attempts; i++ {
		code, err := s.newCode(member.Name())
		if err != nil {
			return nil, err
		}
		share := &models.Share{
			ListingID:      listingID,
			SharerMemberID: memberID,
			ShareCode:      code,
			Status:         domain.ShareStatusPending,
			LoveGiftEarned: decimal.Zero,
		}
		err = s.shareRepo.Create(ctx, share)
		if err == nil {
			s.log.InfoContext(ctx, "share created", "listing_id", listingID, "member_id", memberID, "share_code", code)
			return share, nil
		}
		if !repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: create share: %v", domain.ErrRetryable, err)
		}
		// A concurrent first request may have won the (listing, sharer) slot.
		if existing, lookupErr := s.shareRepo.GetByListingAndSharer(ctx, listingID, memberID); lookupErr == nil {
			return existing, nil
		}
		s.log.WarnContext(ctx, "share code collision", "share_code", code, "attempt", i+1)
	}
	s.log.ErrorContext(ctx, "share code attempts exhausted", "listing_id", listingID, "member_id", memberID, "attempts", s.attempts)
	return nil, domain.ErrShareCodeExhausted
}

// FindShare returns the member's existing share for a listing, or nil when there is none.
func (s *ShareService) FindShare(ctx context.Context, listingID, memberID uint) (*models.Share, error) {
	share, err := s.shareRepo.GetByListingAndSharer(ctx, listingID, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return share, nil
}

// OwnedShare loads a share by code for its sharer. Other members get ErrForbidden.
func (s *ShareService) OwnedShare(ctx context.Context, code string, memberID uint) (*models.Share, error) {
	share, err := s.shareRepo.GetByCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if share.SharerMemberID != memberID {
		return nil, domain.ErrForbidden
	}
	return share, nil
}

// TotalEarned sums the member's credit ledger.
func (s *ShareService) TotalEarned(ctx context.Context, memberID uint) (decimal.Decimal, error) {
	return s.creditRepo.TotalBySharer(ctx, memberID)
}

// ShareLink is the listing URL carrying the share code as ?ref=.
func (s *ShareService) ShareLink(share *models.Share) string {
	return ListingURL(s.baseURL, share.ListingID, share.ShareCode)
}

// ListingURL builds base/listings/{id}, adding ?ref=code when code is set.
func ListingURL(base string, listingID uint, code string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		u = &url.URL{}
	}
	u = u.JoinPath("listings", strconv.FormatUint(uint64(listingID), 10))
	if code != "" {
		q := u.Query()
		q.Set("ref", code)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// ShareSummary is one row of a sharer's dashboard.
type ShareSummary struct {
	Share         models.Share
	ShareLink     string
	Impressions   int64
	CTAClicks     int64
	ProspectCount int64
}

// ListMyShares returns the member's shares with funnel stats and earnings.
func (s *ShareService) ListMyShares(ctx context.Context, memberID uint) ([]ShareSummary, error) {
	shares, err := s.shareRepo.ListBySharer(ctx, memberID)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(shares))
	for _, sh := range shares {
		codes = append(codes, sh.ShareCode)
	}
	events, err := s.funnelRepo.CountsByShareCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	prospects, err := s.prospectRepo.CountByShareTokens(ctx, codes)
	if err != nil {
		return nil, err
	}
	out := make([]ShareSummary, 0, len(shares))
	for i := range shares {
		sh := shares[i]
		c := events[sh.ShareCode]
		out = append(out, ShareSummary{
			Share:         sh,
			ShareLink:     s.ShareLink(&sh),
			Impressions:   c.Impressions,
			CTAClicks:     c.CTAClicks,
			ProspectCount: prospects[sh.ShareCode],
		})
	}
	return out, nil
}
