package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/25-26J-299/smartrose-admin/config"
	"github.com/25-26J-299/smartrose-admin/internal/mw"
)

// NewRouter creates and configures the console router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", mw.RequestIDHeader},
			ExposeHeaders:    []string{mw.RequestIDHeader, mw.CacheHeader},
			AllowCredentials: true,
		}))
	}
	r.Use(mw.RequestID())

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(h.responses, ttl)

	api := r.Group("/console")
	api.Use(rateLimiter, mw.FlushOnWrite(h.responses))
	{
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/session", h.GetSession)

		api.GET("/overview", h.GetOverview)
		api.GET("/users", h.GetUsers)
		api.GET("/devices", h.GetDevices)
		api.GET("/devices/:id/sensor-data", h.GetSensorData)
		api.GET("/greenhouses", h.GetGreenhouses)
		api.GET("/audit-logs", h.GetAuditLogs)
		api.GET("/search", h.requireSession, caching, h.Search)

		api.POST("/users/:id/review", h.OpenReview)
		api.GET("/review", h.GetReview)
		api.DELETE("/review", h.CloseReview)
		api.POST("/review/reload", h.ReloadReview)
		api.POST("/review/edit", h.EditReview)
		api.POST("/review/cancel", h.CancelReview)
		api.PUT("/review/draft", h.PutReviewDraft)
		api.POST("/review/save", h.SaveReview)
		api.POST("/review/approve", h.ApproveUser)
		api.POST("/review/reject", h.RejectUser)

		api.POST("/add-device", h.OpenAddDevice)
		api.GET("/add-device", h.GetAddDevice)
		api.DELETE("/add-device", h.CloseAddDevice)
		api.PUT("/add-device/query", h.PutAddDeviceQuery)
		api.POST("/add-device/select", h.SelectLocation)
		api.POST("/add-device/change-selection", h.ChangeSelection)
		api.PUT("/add-device/form", h.PutAddDeviceForm)
		api.POST("/add-device/submit", h.SubmitAddDevice)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
