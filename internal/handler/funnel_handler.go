package handler

import (
	"net/http"

	"lovegift/internal/service"

	"github.com/gin-gonic/gin"
)

type FunnelHandler struct {
	funnel *service.FunnelService
}

func NewFunnelHandler(funnel *service.FunnelService) *FunnelHandler {
	return &FunnelHandler{funnel: funnel}
}

type impressionRequest struct {
	ListingID uint   `json:"listing_id"`
	ShareCode string `json:"share_code"`
	Event     string `json:"event"`
}

// RecordImpression accepts impression and CTA click beacons. It answers 204
// whatever happens to the write.
// POST /impressions
func (h *FunnelHandler) RecordImpression(c *gin.Context) {
	var req impressionRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		h.funnel.RecordEventAsync(c.Request.Context(), service.EventInput{
			ListingID: req.ListingID,
			ShareCode: req.ShareCode,
			EventType: req.Event,
			ClientIP:  c.ClientIP(),
		})
	}
	c.Status(http.StatusNoContent)
}
