package handler

import (
	"net/http"

	"lovegift/internal/domain"
	"lovegift/internal/repository"
	"lovegift/internal/service"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingRepo *repository.ListingRepository
	funnel      *service.FunnelService
}

func NewListingHandler(listingRepo *repository.ListingRepository, funnel *service.FunnelService) *ListingHandler {
	return &ListingHandler{listingRepo: listingRepo, funnel: funnel}
}

// GetListing returns the public view of a listing and records an impression.
// The discounted price is never part of this response.
// GET /listings/:id?ref=CODE
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	listing, err := h.listingRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			respondError(c, domain.ErrNotFound)
			return
		}
		respondError(c, err)
		return
	}

	if listing.IsActive() {
		h.funnel.RecordEventAsync(c.Request.Context(), service.EventInput{
			ListingID: listing.ID,
			ShareCode: c.Query("ref"),
			EventType: domain.EventImpression,
			ClientIP:  c.ClientIP(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               listing.ID,
		"title":            listing.Title,
		"og_price":         listing.OgPrice,
		"love_gift_amount": listing.LoveGiftAmount,
		"has_discount":     listing.HasDiscount(),
		"seller_name":      listing.Seller.Name(),
		"status":           listing.Status,
		"view_count":       listing.ViewCount,
	})
}
