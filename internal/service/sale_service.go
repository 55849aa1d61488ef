package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lovegift/internal/domain"
	"lovegift/internal/models"
	"lovegift/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConfirmResult reports the outcome of a sale confirmation. A repeat
// confirmation returns Converted with Credited false and AlreadyConverted set.
type ConfirmResult struct {
	Converted        bool             `json:"converted"`
	Credited         bool             `json:"credited"`
	CreditedAmount   *decimal.Decimal `json:"credited_amount,omitempty"`
	SharerName       string           `json:"sharer_name,omitempty"`
	AlreadyConverted bool             `json:"already_converted,omitempty"`
}

// SaleService owns the only money-like state change: converting a prospect
// and crediting the referring share.
type SaleService struct {
	db           *gorm.DB
	listingRepo  *repository.ListingRepository
	memberRepo   *repository.MemberRepository
	shareRepo    *repository.ShareRepository
	prospectRepo *repository.ProspectRepository
	creditRepo   *repository.CreditRepository
	timeout      time.Duration
	now          func() time.Time
	log          *slog.Logger
}

func NewSaleService(
	db *gorm.DB,
	listingRepo *repository.ListingRepository,
	memberRepo *repository.MemberRepository,
	shareRepo *repository.ShareRepository,
	prospectRepo *repository.ProspectRepository,
	creditRepo *repository.CreditRepository,
	timeout time.Duration,
) *SaleService {
	return &SaleService{
		db:           db,
		listingRepo:  listingRepo,
		memberRepo:   memberRepo,
		shareRepo:    shareRepo,
		prospectRepo: prospectRepo,
		creditRepo:   creditRepo,
		timeout:      timeout,
		now:          time.Now,
		log:          slog.Default().With("component", "sale"),
	}
}

// ConfirmSale converts the prospect and credits its share at most once.
// Concurrent calls for the same prospect serialise on the prospect row; the
// losers return the already-converted outcome.
func (s *SaleService) ConfirmSale(ctx context.Context, prospectID, sellerID uint) (*ConfirmResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prospect, err := s.prospectRepo.GetByID(ctx, prospectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load prospect: %v", domain.ErrRetryable, err)
	}
	listing, err := s.listingRepo.GetByID(ctx, prospect.ListingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load listing: %v", domain.ErrRetryable, err)
	}
	if listing.SellerID != sellerID {
		return nil, domain.ErrForbidden
	}
	if prospect.IsConverted() {
		return alreadyConverted(), nil
	}

	var res *ConfirmResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = s.convert(ctx, tx, prospectID, listing)
		return txErr
	})
	if err != nil {
		s.log.ErrorContext(ctx, "sale confirmation rolled back", "prospect_id", prospectID, "error", err)
		return nil, fmt.Errorf("%w: confirm sale: %v", domain.ErrRetryable, err)
	}
	if res.AlreadyConverted {
		s.log.InfoContext(ctx, "sale already confirmed", "prospect_id", prospectID)
		return res, nil
	}
	s.log.InfoContext(ctx, "sale confirmed",
		"prospect_id", prospectID, "listing_id", listing.ID, "credited", res.Credited)
	return res, nil
}

// convert runs inside the transaction; every read and write goes through tx.
func (s *SaleService) convert(ctx context.Context, tx *gorm.DB, prospectID uint, listing *models.Listing) (*ConfirmResult, error) {
	prospects := s.prospectRepo.WithTx(tx)
	shares := s.shareRepo.WithTx(tx)

	locked, err := prospects.GetForUpdate(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	if locked.IsConverted() {
		return alreadyConverted(), nil
	}
	now := s.now()
	won, err := prospects.MarkConverted(ctx, prospectID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return alreadyConverted(), nil
	}

	res := &ConfirmResult{Converted: true}
	if locked.ShareToken == nil {
		return res, nil
	}
	share, err := shares.GetByCode(ctx, *locked.ShareToken)
	if err != nil {
		if repository.IsNotFound(err) {
			return res, nil
		}
		return nil, err
	}
	if share.ListingID != listing.ID || share.IsCredited() {
		return res, nil
	}

	amount := listing.LoveGiftAmount
	credited, err := shares.MarkCredited(ctx, share.ID, share.LoveGiftEarned.Add(amount), now)
	if err != nil {
		return nil, err
	}
	if !credited {
		return res, nil
	}
	err = s.creditRepo.WithTx(tx).Record(ctx, &models.ShareCredit{
		ShareID:        share.ID,
		ProspectID:     prospectID,
		ListingID:      listing.ID,
		SharerMemberID: share.SharerMemberID,
		Amount:         amount,
	})
	if err != nil {
		return nil, err
	}
	res.Credited = true
	res.CreditedAmount = &amount
	if sharer, err := s.memberRepo.WithTx(tx).GetByID(ctx, share.SharerMemberID); err == nil {
		res.SharerName = sharer.Name()
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	return res, nil
}

func alreadyConverted() *ConfirmResult {
	return &ConfirmResult{Converted: true, AlreadyConverted: true}
}
