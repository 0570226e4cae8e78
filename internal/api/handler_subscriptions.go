package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/25-26J-299/smartrose-admin/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

const errPushDisabled = "vapid keys are not configured"

func (h *Handler) pushConfigured() bool {
	return h.webpush != nil && h.webpush.VAPIDPublicKey != "" && h.webpush.VAPIDPrivateKey != ""
}

// GetVAPIDPublicKey returns the key browsers need to subscribe for alerts.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if !h.pushConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errPushDisabled})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}

// PutSubscription registers this browser for pending approval alerts. Nothing
// is stored while alerts cannot be sent.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}
	if !h.pushConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errPushDisabled})
		return
	}

	sub := model.PushSubscription{Endpoint: req.Endpoint, P256DH: req.P256DH, Auth: req.Auth}
	if err := h.subs.SaveSubscription(c.Request.Context(), sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}

	if err := h.subs.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads key without URL decoding; push endpoints are compared
// exactly as the browser sent them.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription reports whether endpoint is registered.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	sub, err := h.subs.GetSubscription(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"endpoint": sub.Endpoint, "subscribed_at": sub.CreatedAt})
}
