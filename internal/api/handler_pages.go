package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
)

// GetUsers renders the users page, optionally filtered by ?status=.
func (h *Handler) GetUsers(c *gin.Context) {
	snap := h.console.Users.Load(c.Request.Context(), c.Query("status"))
	h.render(c, snap.Err(), snap)
}

// GetDevices renders the devices page, optionally filtered by
// ?location_id= and ?user_id=.
func (h *Handler) GetDevices(c *gin.Context) {
	snap := h.console.Devices.Load(c.Request.Context(), adminapi.DeviceFilter{
		LocationID: c.Query("location_id"),
		UserID:     c.Query("user_id"),
	})
	h.render(c, snap.Err(), snap)
}

func (h *Handler) GetGreenhouses(c *gin.Context) {
	snap := h.console.Greenhouses.Load(c.Request.Context())
	h.render(c, snap.Err(), snap)
}

func (h *Handler) GetAuditLogs(c *gin.Context) {
	snap := h.console.AuditLogs.Load(c.Request.Context())
	h.render(c, snap.Err(), snap)
}

func (h *Handler) GetOverview(c *gin.Context) {
	snap := h.console.Overview.Load(c.Request.Context())
	h.render(c, snap.Err(), snap)
}

// GetSensorData opens the sensor data modal for a device.
func (h *Handler) GetSensorData(c *gin.Context) {
	snap := h.console.Sensor.Open(c.Request.Context(), c.Param("id"))
	h.render(c, snap.Err(), snap)
}

// Search looks up approved users without touching the add device flow.
func (h *Handler) Search(c *gin.Context) {
	hits, err := h.console.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits})
}
