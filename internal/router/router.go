package router

import (
	"log/slog"
	"net/http"

	"lovegift/config"
	"lovegift/internal/handler"
	"lovegift/internal/middleware"
	"lovegift/internal/repository"
	"lovegift/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine. The funnel
// service is passed in so the caller can drain its background writes on shutdown.
// The returned stop func releases the rate limiter's sweeper.
func Setup(cfg *config.Config, db *gorm.DB, funnelSvc *service.FunnelService) (*gin.Engine, func()) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(slog.Default().With("component", "http")))
	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	publicWrites := middleware.RateLimit(limiter)

	// Repositories
	listingRepo := repository.NewListingRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	shareRepo := repository.NewShareRepository(db)
	funnelRepo := repository.NewFunnelRepository(db)
	prospectRepo := repository.NewProspectRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	// Services
	shareSvc := service.NewShareService(listingRepo, memberRepo, shareRepo, funnelRepo, prospectRepo, creditRepo,
		cfg.App.PublicBaseURL, cfg.App.ShareCodeAttempts)
	prospectSvc := service.NewProspectService(listingRepo, shareRepo, prospectRepo, cfg.App.CouponCodeAttempts)
	saleSvc := service.NewSaleService(db, listingRepo, memberRepo, shareRepo, prospectRepo, creditRepo, cfg.App.ConfirmTimeout)

	// Handlers
	listingHandler := handler.NewListingHandler(listingRepo, funnelSvc)
	shareHandler := handler.NewShareHandler(shareSvc, funnelSvc)
	funnelHandler := handler.NewFunnelHandler(funnelSvc)
	prospectHandler := handler.NewProspectHandler(prospectSvc, saleSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

		// Public buyer surface
		api.GET("/listings/:id", listingHandler.GetListing)
		api.POST("/impressions", publicWrites, funnelHandler.RecordImpression)
		api.POST("/prospects", publicWrites, prospectHandler.SubmitProspect)

		// Sharers
		api.GET("/listings/:id/share", authMw, shareHandler.GetMyShare)
		api.POST("/listings/:id/share", authMw, shareHandler.CreateShare)
		api.GET("/shares/mine", authMw, shareHandler.ListMyShares)
		api.GET("/shares/:code/stats", authMw, shareHandler.GetShareStats)

		// Sellers
		api.GET("/listings/:id/prospects", authMw, prospectHandler.ListProspects)
		api.PATCH("/listings/:id/prospects", authMw, prospectHandler.UpdateProspectStatus)
		api.POST("/prospects/:id/confirm", authMw, prospectHandler.ConfirmSale)
	}
	return r, limiter.Close
}
