package service

import (
	"testing"
	"time"

	"lovegift/internal/database/dbtest"
	"lovegift/internal/models"
	"lovegift/internal/repository"
	"lovegift/pkg/iphash"

	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	shares    *ShareService
	funnel    *FunnelService
	prospects *ProspectService
	sales     *SaleService
	shareRepo *repository.ShareRepository
	seller    *models.Member
	sharer    *models.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	listingRepo := repository.NewListingRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	shareRepo := repository.NewShareRepository(db)
	funnelRepo := repository.NewFunnelRepository(db)
	prospectRepo := repository.NewProspectRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	return &fixture{
		db:        db,
		shares:    NewShareService(listingRepo, memberRepo, shareRepo, funnelRepo, prospectRepo, creditRepo, "https://market.example", 5),
		funnel:    NewFunnelService(listingRepo, funnelRepo, prospectRepo, iphash.New("test-key"), time.Second),
		prospects: NewProspectService(listingRepo, shareRepo, prospectRepo, 5),
		sales:     NewSaleService(db, listingRepo, memberRepo, shareRepo, prospectRepo, creditRepo, 5*time.Second),
		shareRepo: shareRepo,
		seller:    dbtest.Member(t, db, "Sally Seller", "sally@example.com"),
		sharer:    dbtest.Member(t, db, "Sam Sharer", "sam@example.com"),
	}
}
