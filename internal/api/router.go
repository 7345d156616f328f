package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"schichtbuch-backend/config"
	"schichtbuch-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig, mediaRoot, jwtSecret string) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	requireAuth := mw.RequireAuth(h.store, jwtSecret)

	// Media files (images and videos) are served straight from disk.
	r.Static("/media", mediaRoot)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", h.Login)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(requireAuth)
		{
			authed.POST("/auth/password", h.ChangePassword)

			authed.GET("/dashboard", h.Dashboard)

			authed.GET("/machines", caching, h.ListMachines)
			authed.POST("/machines", h.CreateMachine)

			authed.GET("/entries", h.ListEntries)
			authed.POST("/entries", h.CreateEntry)
			authed.GET("/entries/:id", h.GetEntry)
			authed.POST("/entries/:id/updates", h.CreateUpdate)
			authed.POST("/entries/:id/like", h.ToggleLike)
			authed.POST("/entries/:id/spare-parts/processed", h.ToggleSparePartsProcessed)

			authed.GET("/notifications", h.ListNotifications)
			authed.GET("/notifications/unread-count", h.UnreadNotificationCount)

			authed.GET("/subscriptions", h.GetSubscriptions)
			authed.PUT("/subscriptions", h.PutSubscription)
			authed.DELETE("/subscriptions", h.DeleteSubscription)
		}
	}

	return r
}
