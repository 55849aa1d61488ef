package database

import (
	"errors"
	"log/slog"

	"lovegift/internal/domain"
	"lovegift/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedDemo inserts a seller, a sharer and one discounted listing for local
// development. It does nothing when the seller already exists.
func SeedDemo(db *gorm.DB) error {
	var seller models.Member
	err := db.Where("email = ?", "seller@demo.local").First(&seller).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		seller = models.Member{DisplayName: "Demo Seller", Email: "seller@demo.local"}
		if err := tx.Create(&seller).Error; err != nil {
			return err
		}
		sharer := models.Member{DisplayName: "Demo Sharer", Email: "sharer@demo.local"}
		if err := tx.Create(&sharer).Error; err != nil {
			return err
		}
		og := decimal.NewFromInt(1000)
		disc := decimal.NewFromInt(900)
		listing := models.Listing{
			SellerID:        seller.ID,
			Title:           "Demo rocking chair",
			OgPrice:         &og,
			DiscountedPrice: &disc,
			LoveGiftAmount:  decimal.NewFromInt(100),
			Status:          domain.ListingStatusActive,
		}
		if err := tx.Create(&listing).Error; err != nil {
			return err
		}
		slog.Info("seeded demo data", "component", "database", "seller_id", seller.ID, "sharer_id", sharer.ID, "listing_id", listing.ID)
		return nil
	})
}
