package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lovegift/internal/domain"
	"lovegift/internal/models"
	"lovegift/internal/repository"
	"lovegift/pkg/codegen"

	"github.com/shopspring/decimal"
)

// SubmitProspectInput is a lead capture request. ShareToken and IdempotencyKey are optional.
type SubmitProspectInput struct {
	ListingID      uint
	ShareToken     string
	IdempotencyKey string
	Action         ProspectAction
}

// ProspectResult is the only response that may carry a listing's discounted price.
type ProspectResult struct {
	ProspectID      uint             `json:"-"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	OgPrice         *decimal.Decimal `json:"og_price,omitempty"`
	SellerName      string           `json:"seller_name"`
	CouponCode      string           `json:"coupon_code,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// SellerFunnel is the owner's view of a listing's prospects.
type SellerFunnel struct {
	Listing   *models.Listing
	Prospects []models.Prospect
}

type ProspectService struct {
	listingRepo  *repository.ListingRepository
	shareRepo    *repository.ShareRepository
	prospectRepo *repository.ProspectRepository
	attempts     int
	newCoupon    func() (string, error)
	log          *slog.Logger
}

func NewProspectService(
	listingRepo *repository.ListingRepository,
	shareRepo *repository.ShareRepository,
	prospectRepo *repository.ProspectRepository,
	couponAttempts int,
) *ProspectService {
	if couponAttempts < 1 {
		couponAttempts = 1
	}
	return &ProspectService{
		listingRepo:  listingRepo,
		shareRepo:    shareRepo,
		prospectRepo: prospectRepo,
		attempts:     couponAttempts,
		newCoupon:    codegen.CouponCode,
		log:          slog.Default().With("component", "prospect"),
	}
}

// SubmitProspect validates and stores a lead, attributing it to the share named
// by ShareToken when that share belongs to the same listing. A coupon and the
// discounted price are returned only when the listing has a real discount.
func (s *ProspectService) SubmitProspect(ctx context.Context, in SubmitProspectInput) (*ProspectResult, error) {
	if in.Action == nil {
		return nil, domain.Invalid("action_type", "must be reveal or contact")
	}
	if err := in.Action.Validate(); err != nil {
		return nil, err
	}
	listing, err := s.activeListing(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		prior, err := s.prospectRepo.GetByIdempotencyKey(ctx, listing.ID, key)
		if err == nil {
			return s.resultFor(listing, prior), nil
		}
		if !repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: load prospect: %v", domain.ErrRetryable, err)
		}
	}

	lead := in.Action.LeadDetails()
	p := &models.Prospect{
		ListingID:    listing.ID,
		ActionType:   in.Action.ActionType(),
		ShareToken:   s.attribute(ctx, listing.ID, in.ShareToken),
		ProspectName: lead.Name,
		Consented:    lead.Consented,
		Status:       domain.ProspectStatusPending,
	}
	if lead.Mobile != "" {
		p.ProspectMobile = &lead.Mobile
	}
	if lead.Email != "" {
		p.ProspectEmail = &lead.Email
	}
	if key != "" {
		p.IdempotencyKey = &key
	}

	for i := 0; i < s.attempts; i++ {
		p.ID = 0
		p.CouponCode = nil
		p.Status = domain.ProspectStatusPending
		if listing.HasDiscount() {
			code, err := s.newCoupon()
			if err != nil {
				return nil, err
			}
			p.CouponCode = &code
			p.Status = domain.ProspectStatusRevealed
		}
		err := s.prospectRepo.Create(ctx, p)
		if err == nil {
			s.log.InfoContext(ctx, "prospect captured",
				"prospect_id", p.ID, "listing_id", listing.ID, "action_type", p.ActionType,
				"attributed", p.ShareToken != nil, "revealed", p.CouponCode != nil)
			return s.resultFor(listing, p), nil
		}
		if !repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: create prospect: %v", domain.ErrRetryable, err)
		}
		if key != "" {
			// Same idempotency key submitted concurrently; answer with the winner.
			if prior, lookupErr := s.prospectRepo.GetByIdempotencyKey(ctx, listing.ID, key); lookupErr == nil {
				return s.resultFor(listing, prior), nil
			}
		}
		if p.CouponCode == nil {
			return nil, fmt.Errorf("%w: create prospect: %v", domain.ErrRetryable, err)
		}
		s.log.WarnContext(ctx, "coupon code collision", "attempt", i+1)
	}
	return nil, domain.ErrCouponExhausted
}

// attribute returns the share code when it names a share of this listing.
// Unknown or foreign codes are treated as organic traffic.
func (s *ProspectService) attribute(ctx context.Context, listingID uint, token string) *string {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	share, err := s.shareRepo.GetByCode(ctx, token)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.log.WarnContext(ctx, "share lookup failed, capturing as organic", "share_code", token, "error", err)
		}
		return nil
	}
	if share.ListingID != listingID {
		return nil
	}
	code := share.ShareCode
	return &code
}

// resultFor answers from the stored prospect, so a replayed key gets the
// original action's acknowledgment.
func (s *ProspectService) resultFor(listing *models.Listing, p *models.Prospect) *ProspectResult {
	res := &ProspectResult{
		ProspectID: p.ID,
		SellerName: listing.Seller.Name(),
	}
	if stored, err := NewProspectAction(p.ActionType, Lead{}); err == nil {
		res.Message = stored.acknowledgment()
	}
	if listing.HasDiscount() && p.CouponCode != nil {
		res.DiscountedPrice = listing.DiscountedPrice
		res.OgPrice = listing.OgPrice
		res.CouponCode = *p.CouponCode
	}
	return res
}

func (s *ProspectService) activeListing(ctx context.Context, id uint) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load listing: %v", domain.ErrRetryable, err)
	}
	if !listing.IsActive() {
		return nil, domain.ErrNotFound
	}
	return listing, nil
}

func (s *ProspectService) ownedListing(ctx context.Context, listingID, sellerID uint) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

// ListForSeller returns the listing's prospects to its owner.
func (s *ProspectService) ListForSeller(ctx context.Context, listingID, sellerID uint) (*SellerFunnel, error) {
	listing, err := s.ownedListing(ctx, listingID, sellerID)
	if err != nil {
		return nil, err
	}
	prospects, err := s.prospectRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return &SellerFunnel{Listing: listing, Prospects: prospects}, nil
}

// UpdateStatus lets the owner mark a prospect contacted or rejected.
// Converted prospects are terminal and conversion only happens through ConfirmSale.
func (s *ProspectService) UpdateStatus(ctx context.Context, listingID, sellerID, prospectID uint, status string) error {
	switch status {
	case domain.ProspectStatusContacted, domain.ProspectStatusRejected:
	default:
		return domain.Invalid("status", "must be contacted or rejected")
	}
	if _, err := s.ownedListing(ctx, listingID, sellerID); err != nil {
		return err
	}
	ok, err := s.prospectRepo.UpdateStatus(ctx, listingID, prospectID, status)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	p, err := s.prospectRepo.GetByID(ctx, prospectID)
	if err != nil || p.ListingID != listingID {
		return domain.ErrNotFound
	}
	if p.IsConverted() {
		return domain.Invalid("status", "prospect is already converted")
	}
	// Status already had the requested value.
	return nil
}
