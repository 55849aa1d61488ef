package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lovegift/internal/database/dbtest"
	"lovegift/internal/domain"
	"lovegift/internal/models"

	"github.com/shopspring/decimal"
)

func TestContactRequiresMobileAndConsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 0, 100)

	_, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID: listing.ID,
		Action:    ContactAction{Lead: Lead{Name: "Jane", Consented: true}},
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "prospect_mobile" {
		t.Fatalf("expected prospect_mobile validation error, got %v", err)
	}
	_, err = f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID: listing.ID,
		Action:    ContactAction{Lead: Lead{Name: "Jane", Mobile: "0917 555 0101"}},
	})
	if !errors.As(err, &ve) || ve.Field != "consented" {
		t.Fatalf("expected consented validation error, got %v", err)
	}
	var n int64
	f.db.Model(&models.Prospect{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected submissions must not persist, found %d", n)
	}

	res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID: listing.ID,
		Action:    ContactAction{Lead: Lead{Name: "Jane", Mobile: "0917 555 0101", Consented: true}},
	})
	if err != nil {
		t.Fatalf("valid contact: %v", err)
	}
	if res.Message == "" || res.SellerName != "Sally Seller" {
		t.Fatalf("expected acknowledgment and seller name, got %+v", res)
	}
}

func TestRevealRequiresName(t *testing.T) {
	f := newFixture(t)
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	_, err := f.prospects.SubmitProspect(context.Background(), SubmitProspectInput{
		ListingID: listing.ID,
		Action:    RevealAction{Lead: Lead{Name: "   "}},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewProspectActionRejectsUnknownType(t *testing.T) {
	if _, err := NewProspectAction("buy", Lead{Name: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	a, err := NewProspectAction(" Contact ", Lead{Name: "x"})
	if err != nil || a.ActionType() != domain.ActionContact {
		t.Fatalf("expected contact action, got %v %v", a, err)
	}
}

func TestDiscountRevealedOnlyWithDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	discounted := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	plain := dbtest.Listing(t, f.db, f.seller.ID, 1000, 0, 100)

	for _, action := range []ProspectAction{
		RevealAction{Lead: Lead{Name: "Jane"}},
		ContactAction{Lead: Lead{Name: "Jane", Mobile: "0917", Consented: true}},
	} {
		res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{ListingID: discounted.ID, Action: action})
		if err != nil {
			t.Fatalf("%s on discounted listing: %v", action.ActionType(), err)
		}
		if res.DiscountedPrice == nil || !res.DiscountedPrice.Equal(decimal.NewFromInt(900)) {
			t.Fatalf("%s: expected discounted price 900, got %v", action.ActionType(), res.DiscountedPrice)
		}
		if res.CouponCode == "" || res.OgPrice == nil {
			t.Fatalf("%s: expected coupon and og price, got %+v", action.ActionType(), res)
		}

		res, err = f.prospects.SubmitProspect(ctx, SubmitProspectInput{ListingID: plain.ID, Action: action})
		if err != nil {
			t.Fatalf("%s on plain listing: %v", action.ActionType(), err)
		}
		if res.DiscountedPrice != nil || res.CouponCode != "" || res.OgPrice != nil {
			t.Fatalf("%s: plain listing must not reveal pricing, got %+v", action.ActionType(), res)
		}
	}

	var revealed []models.Prospect
	f.db.Where("listing_id = ?", discounted.ID).Find(&revealed)
	if len(revealed) != 2 || revealed[0].Status != domain.ProspectStatusRevealed || *revealed[0].CouponCode == *revealed[1].CouponCode {
		t.Fatalf("expected two revealed prospects with distinct coupons, got %+v", revealed)
	}
	var pending []models.Prospect
	f.db.Where("listing_id = ?", plain.ID).Find(&pending)
	for _, p := range pending {
		if p.Status != domain.ProspectStatusPending || p.CouponCode != nil {
			t.Fatalf("plain listing prospect should be pending without coupon: %+v", p)
		}
	}
}

func TestShareTokenAttributionIsScopedToListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	other := dbtest.Listing(t, f.db, f.seller.ID, 500, 0, 50)
	share, err := f.shares.GetOrCreateShare(ctx, other.ID, f.sharer.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}

	cases := []string{share.ShareCode, "NOSUCH0000"}
	for _, token := range cases {
		res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
			ListingID: listing.ID, ShareToken: token, Action: RevealAction{Lead: Lead{Name: "Jane"}},
		})
		if err != nil {
			t.Fatalf("token %s should not block capture: %v", token, err)
		}
		var p models.Prospect
		f.db.First(&p, res.ProspectID)
		if p.ShareToken != nil {
			t.Fatalf("token %s must be treated as organic, got %q", token, *p.ShareToken)
		}
	}

	res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID: other.ID, ShareToken: share.ShareCode, Action: RevealAction{Lead: Lead{Name: "Jane"}},
	})
	if err != nil {
		t.Fatalf("attributed: %v", err)
	}
	var p models.Prospect
	f.db.First(&p, res.ProspectID)
	if p.ShareToken == nil || *p.ShareToken != share.ShareCode {
		t.Fatalf("expected attribution to %s, got %v", share.ShareCode, p.ShareToken)
	}
}

func TestIdempotencyKeyReturnsSameCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	in := SubmitProspectInput{ListingID: listing.ID, IdempotencyKey: "browser-123", Action: RevealAction{Lead: Lead{Name: "Jane"}}}

	first, err := f.prospects.SubmitProspect(ctx, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.prospects.SubmitProspect(ctx, in)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if first.CouponCode != second.CouponCode || first.ProspectID != second.ProspectID {
		t.Fatalf("repeat must return the same prospect and coupon: %+v vs %+v", first, second)
	}
	third, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{ListingID: listing.ID, Action: RevealAction{Lead: Lead{Name: "Jane"}}})
	if err != nil {
		t.Fatalf("keyless: %v", err)
	}
	if third.CouponCode == first.CouponCode {
		t.Fatal("keyless repeat is a new prospect with its own coupon")
	}
}

func TestIdempotentReplayKeepsOriginalAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	contact := ContactAction{Lead: Lead{Name: "Jane", Mobile: "0917", Consented: true}}

	first, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{ListingID: listing.ID, IdempotencyKey: "tap-7", Action: contact})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	replay, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID: listing.ID, IdempotencyKey: "tap-7", Action: RevealAction{Lead: Lead{Name: "Jane"}},
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.ProspectID != first.ProspectID {
		t.Fatalf("replay must return the stored prospect, got %d want %d", replay.ProspectID, first.ProspectID)
	}
	if replay.Message != contact.acknowledgment() || replay.Message == "" {
		t.Fatalf("replay must acknowledge the stored contact action, got %q", replay.Message)
	}
}

func TestConcurrentSubmitsWithSameKeyStoreOneProspect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	in := SubmitProspectInput{ListingID: listing.ID, IdempotencyKey: "double-tap", Action: RevealAction{Lead: Lead{Name: "Jane"}}}

	const n = 16
	var wg sync.WaitGroup
	results := make([]*ProspectResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.prospects.SubmitProspect(ctx, in)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		if results[i].CouponCode == "" || results[i].CouponCode != results[0].CouponCode {
			t.Fatalf("call %d returned coupon %q, want %q", i, results[i].CouponCode, results[0].CouponCode)
		}
		if results[i].ProspectID != results[0].ProspectID {
			t.Fatalf("call %d returned prospect %d, want %d", i, results[i].ProspectID, results[0].ProspectID)
		}
	}
	var rows int64
	f.db.Model(&models.Prospect{}).Where("listing_id = ?", listing.ID).Count(&rows)
	if rows != 1 {
		t.Fatalf("expected 1 prospect row, got %d", rows)
	}
}

func TestCouponCollisionRetries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	codes := []string{"LG-AAAA2222", "LG-AAAA2222", "LG-BBBB3333"}
	calls := 0
	f.prospects.newCoupon = func() (string, error) {
		c := codes[calls]
		calls++
		return c, nil
	}
	in := SubmitProspectInput{ListingID: listing.ID, Action: RevealAction{Lead: Lead{Name: "Jane"}}}
	if _, err := f.prospects.SubmitProspect(ctx, in); err != nil {
		t.Fatalf("first: %v", err)
	}
	res, err := f.prospects.SubmitProspect(ctx, in)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if res.CouponCode != "LG-BBBB3333" {
		t.Fatalf("expected retry coupon, got %q", res.CouponCode)
	}
}

func TestSubmitProspectRejectsInactiveListing(t *testing.T) {
	f := newFixture(t)
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	f.db.Model(listing).Update("status", domain.ListingStatusArchived)
	_, err := f.prospects.SubmitProspect(context.Background(), SubmitProspectInput{
		ListingID: listing.ID, Action: RevealAction{Lead: Lead{Name: "Jane"}},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSellerFunnelIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{ListingID: listing.ID, Action: RevealAction{Lead: Lead{Name: "Jane"}}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := f.prospects.ListForSeller(ctx, listing.ID, f.sharer.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner list, got %v", err)
	}
	funnel, err := f.prospects.ListForSeller(ctx, listing.ID, f.seller.ID)
	if err != nil || len(funnel.Prospects) != 1 {
		t.Fatalf("owner list: %v %+v", err, funnel)
	}

	if err := f.prospects.UpdateStatus(ctx, listing.ID, f.sharer.ID, res.ProspectID, domain.ProspectStatusContacted); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	if err := f.prospects.UpdateStatus(ctx, listing.ID, f.seller.ID, res.ProspectID, domain.ProspectStatusConverted); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("converted must go through confirm, got %v", err)
	}
	if err := f.prospects.UpdateStatus(ctx, listing.ID, f.seller.ID, res.ProspectID, domain.ProspectStatusContacted); err != nil {
		t.Fatalf("contacted: %v", err)
	}
	if err := f.prospects.UpdateStatus(ctx, listing.ID, f.seller.ID, 9999, domain.ProspectStatusRejected); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.sales.ConfirmSale(ctx, res.ProspectID, f.seller.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := f.prospects.UpdateStatus(ctx, listing.ID, f.seller.ID, res.ProspectID, domain.ProspectStatusRejected); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("converted prospect is terminal, got %v", err)
	}
}
