// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"lovegift/config"
	"lovegift/internal/database"
	"lovegift/internal/domain"
	"lovegift/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New returns a fresh migrated database that is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Member(t testing.TB, db *gorm.DB, name, email string) *models.Member {
	t.Helper()
	m := &models.Member{DisplayName: name, Email: email}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

// Listing creates an active listing. A zero discounted price means no discount.
func Listing(t testing.TB, db *gorm.DB, sellerID uint, og, discounted, loveGift int64) *models.Listing {
	t.Helper()
	l := &models.Listing{
		SellerID:       sellerID,
		Title:          "Oak dining table",
		LoveGiftAmount: decimal.NewFromInt(loveGift),
		Status:         domain.ListingStatusActive,
	}
	if og > 0 {
		v := decimal.NewFromInt(og)
		l.OgPrice = &v
	}
	if discounted > 0 {
		v := decimal.NewFromInt(discounted)
		l.DiscountedPrice = &v
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}
