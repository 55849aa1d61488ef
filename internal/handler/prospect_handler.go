package handler

import (
	"net/http"
	"strings"

	"lovegift/internal/middleware"
	"lovegift/internal/service"

	"github.com/gin-gonic/gin"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type ProspectHandler struct {
	prospects *service.ProspectService
	sales     *service.SaleService
}

func NewProspectHandler(prospects *service.ProspectService, sales *service.SaleService) *ProspectHandler {
	return &ProspectHandler{prospects: prospects, sales: sales}
}

type submitProspectRequest struct {
	ListingID      uint   `json:"listing_id" binding:"required"`
	ShareToken     string `json:"share_token" binding:"max=32"`
	ActionType     string `json:"action_type" binding:"required"`
	ProspectName   string `json:"prospect_name" binding:"max=120"`
	ProspectMobile string `json:"prospect_mobile" binding:"max=32"`
	ProspectEmail  string `json:"prospect_email" binding:"omitempty,email,max=255"`
	Consented      bool   `json:"consented"`
}

// SubmitProspect captures a reveal or contact lead from a buyer.
// POST /prospects
func (h *ProspectHandler) SubmitProspect(c *gin.Context) {
	var req submitProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	action, err := service.NewProspectAction(req.ActionType, service.Lead{
		Name:      req.ProspectName,
		Mobile:    req.ProspectMobile,
		Email:     req.ProspectEmail,
		Consented: req.Consented,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "must be at most 64 characters", "field": IdempotencyKeyHeader})
		return
	}
	res, err := h.prospects.SubmitProspect(c.Request.Context(), service.SubmitProspectInput{
		ListingID:      req.ListingID,
		ShareToken:     strings.TrimSpace(req.ShareToken),
		IdempotencyKey: key,
		Action:         action,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListProspects is the seller's funnel for one of their listings.
// GET /listings/:id/prospects
func (h *ProspectHandler) ListProspects(c *gin.Context) {
	listingID, ok := parseID(c, "id")
	if !ok {
		return
	}
	funnel, err := h.prospects.ListForSeller(c.Request.Context(), listingID, middleware.GetMemberID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listing": gin.H{
			"id":               funnel.Listing.ID,
			"title":            funnel.Listing.Title,
			"love_gift_amount": funnel.Listing.LoveGiftAmount,
		},
		"prospects": funnel.Prospects,
	})
}

type updateProspectRequest struct {
	ProspectID uint   `json:"prospect_id" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

// UpdateProspectStatus marks a prospect contacted or rejected.
// PATCH /listings/:id/prospects
func (h *ProspectHandler) UpdateProspectStatus(c *gin.Context) {
	listingID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if err := h.prospects.UpdateStatus(c.Request.Context(), listingID, middleware.GetMemberID(c), req.ProspectID, status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ConfirmSale converts a prospect and credits the sharer, at most once per share.
// POST /prospects/:id/confirm
func (h *ProspectHandler) ConfirmSale(c *gin.Context) {
	prospectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.sales.ConfirmSale(c.Request.Context(), prospectID, middleware.GetMemberID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
