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

func TestLoveGiftScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)

	share, err := f.shares.GetOrCreateShare(ctx, listing.ID, f.sharer.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID:  listing.ID,
		ShareToken: share.ShareCode,
		Action:     RevealAction{Lead: Lead{Name: "Jane"}},
	})
	if err != nil {
		t.Fatalf("prospect: %v", err)
	}
	if !res.DiscountedPrice.Equal(decimal.NewFromInt(900)) || res.CouponCode == "" {
		t.Fatalf("expected reveal with coupon, got %+v", res)
	}

	first, err := f.sales.ConfirmSale(ctx, res.ProspectID, f.seller.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !first.Converted || !first.Credited || !first.CreditedAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected first confirm %+v", first)
	}
	if first.SharerName != "Sam Sharer" {
		t.Fatalf("expected sharer name, got %q", first.SharerName)
	}
	assertShare(t, f, share.ShareCode, domain.ShareStatusCredited, 100)

	second, err := f.sales.ConfirmSale(ctx, res.ProspectID, f.seller.ID)
	if err != nil {
		t.Fatalf("second confirm must not error: %v", err)
	}
	if !second.Converted || second.Credited || !second.AlreadyConverted {
		t.Fatalf("unexpected second confirm %+v", second)
	}
	assertShare(t, f, share.ShareCode, domain.ShareStatusCredited, 100)

	var credits int64
	f.db.Model(&models.ShareCredit{}).Count(&credits)
	if credits != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", credits)
	}
}

func TestConcurrentConfirmCreditsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	share, err := f.shares.GetOrCreateShare(ctx, listing.ID, f.sharer.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID: listing.ID, ShareToken: share.ShareCode, Action: RevealAction{Lead: Lead{Name: "Jane"}},
	})
	if err != nil {
		t.Fatalf("prospect: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*ConfirmResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.sales.ConfirmSale(ctx, res.ProspectID, f.seller.ID)
		}(i)
	}
	wg.Wait()

	credited := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		if !results[i].Converted {
			t.Fatalf("call %d not converted: %+v", i, results[i])
		}
		if results[i].Credited {
			credited++
		}
	}
	if credited != 1 {
		t.Fatalf("expected exactly one crediting call, got %d", credited)
	}
	assertShare(t, f, share.ShareCode, domain.ShareStatusCredited, 100)
}

func TestConfirmOrganicProspectConvertsWithoutCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 0, 100)
	res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
		ListingID: listing.ID, Action: ContactAction{Lead: Lead{Name: "Jane", Mobile: "0917", Consented: true}},
	})
	if err != nil {
		t.Fatalf("prospect: %v", err)
	}
	out, err := f.sales.ConfirmSale(ctx, res.ProspectID, f.seller.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !out.Converted || out.Credited || out.CreditedAmount != nil {
		t.Fatalf("organic prospect must convert without credit: %+v", out)
	}
	var p models.Prospect
	f.db.First(&p, res.ProspectID)
	if p.Status != domain.ProspectStatusConverted || p.ConvertedAt == nil {
		t.Fatalf("prospect not converted: %+v", p)
	}
}

func TestShareCreditedOnlyForFirstSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	share, err := f.shares.GetOrCreateShare(ctx, listing.ID, f.sharer.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	var ids []uint
	for _, name := range []string{"Jane", "Joe"} {
		res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{
			ListingID: listing.ID, ShareToken: share.ShareCode, Action: RevealAction{Lead: Lead{Name: name}},
		})
		if err != nil {
			t.Fatalf("prospect %s: %v", name, err)
		}
		ids = append(ids, res.ProspectID)
	}
	first, err := f.sales.ConfirmSale(ctx, ids[0], f.seller.ID)
	if err != nil || !first.Credited {
		t.Fatalf("first sale: %+v %v", first, err)
	}
	second, err := f.sales.ConfirmSale(ctx, ids[1], f.seller.ID)
	if err != nil {
		t.Fatalf("second sale: %v", err)
	}
	if !second.Converted || second.Credited || second.AlreadyConverted {
		t.Fatalf("second prospect converts without crediting an already credited share: %+v", second)
	}
	assertShare(t, f, share.ShareCode, domain.ShareStatusCredited, 100)
}

func TestConfirmSaleAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := dbtest.Listing(t, f.db, f.seller.ID, 1000, 900, 100)
	res, err := f.prospects.SubmitProspect(ctx, SubmitProspectInput{ListingID: listing.ID, Action: RevealAction{Lead: Lead{Name: "Jane"}}})
	if err != nil {
		t.Fatalf("prospect: %v", err)
	}
	if _, err := f.sales.ConfirmSale(ctx, res.ProspectID, f.sharer.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.sales.ConfirmSale(ctx, 4242, f.seller.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var p models.Prospect
	f.db.First(&p, res.ProspectID)
	if p.IsConverted() {
		t.Fatal("forbidden confirm must not convert")
	}
}

func assertShare(t *testing.T, f *fixture, code, status string, earned int64) {
	t.Helper()
	s, err := f.shareRepo.GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("reload share: %v", err)
	}
	if s.Status != status || !s.LoveGiftEarned.Equal(decimal.NewFromInt(earned)) {
		t.Fatalf("share %s: status=%s earned=%s, want %s/%d", code, s.Status, s.LoveGiftEarned, status, earned)
	}
}
