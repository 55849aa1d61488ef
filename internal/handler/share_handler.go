package handler

import (
	"net/http"

	"lovegift/internal/middleware"
	"lovegift/internal/service"

	"github.com/gin-gonic/gin"
)

type ShareHandler struct {
	shares *service.ShareService
	funnel *service.FunnelService
}

func NewShareHandler(shares *service.ShareService, funnel *service.FunnelService) *ShareHandler {
	return &ShareHandler{shares: shares, funnel: funnel}
}

// GetMyShare returns the caller's share for a listing without creating one.
// GET /listings/:id/share
func (h *ShareHandler) GetMyShare(c *gin.Context) {
	listingID, ok := parseID(c, "id")
	if !ok {
		return
	}
	share, err := h.shares.FindShare(c.Request.Context(), listingID, middleware.GetMemberID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if share == nil {
		c.JSON(http.StatusOK, gin.H{"share_link": nil, "share_code": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_link": h.shares.ShareLink(share), "share_code": share.ShareCode})
}

// CreateShare returns the caller's share for a listing, issuing a code on first use.
// POST /listings/:id/share
func (h *ShareHandler) CreateShare(c *gin.Context) {
	listingID, ok := parseID(c, "id")
	if !ok {
		return
	}
	share, err := h.shares.GetOrCreateShare(c.Request.Context(), listingID, middleware.GetMemberID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_link": h.shares.ShareLink(share), "share_code": share.ShareCode})
}

// ListMyShares is the sharer dashboard.
// GET /shares/mine
func (h *ShareHandler) ListMyShares(c *gin.Context) {
	ctx := c.Request.Context()
	memberID := middleware.GetMemberID(c)
	list, err := h.shares.ListMyShares(ctx, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.shares.TotalEarned(ctx, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, gin.H{
			"share_code":       s.Share.ShareCode,
			"share_link":       s.ShareLink,
			"status":           s.Share.Status,
			"love_gift_earned": s.Share.LoveGiftEarned,
			"credited_at":      s.Share.CreditedAt,
			"impressions":      s.Impressions,
			"cta_clicks":       s.CTAClicks,
			"prospect_count":   s.ProspectCount,
			"listing": gin.H{
				"id":               s.Share.Listing.ID,
				"title":            s.Share.Listing.Title,
				"love_gift_amount": s.Share.Listing.LoveGiftAmount,
				"status":           s.Share.Listing.Status,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"shares": out, "total": len(out), "total_earned": total})
}

// GetShareStats returns the funnel for one of the caller's share codes.
// GET /shares/:code/stats
func (h *ShareHandler) GetShareStats(c *gin.Context) {
	ctx := c.Request.Context()
	share, err := h.shares.OwnedShare(ctx, c.Param("code"), middleware.GetMemberID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := h.funnel.GetFunnelStats(ctx, share.ShareCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
