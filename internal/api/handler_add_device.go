package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/25-26J-299/smartrose-admin/internal/console"
)

func (h *Handler) OpenAddDevice(c *gin.Context) {
	c.JSON(http.StatusOK, h.console.AddDevice.Open())
}

func (h *Handler) GetAddDevice(c *gin.Context) {
	c.JSON(http.StatusOK, h.console.AddDevice.Snapshot())
}

func (h *Handler) CloseAddDevice(c *gin.Context) {
	h.console.AddDevice.Close()
	c.Status(http.StatusNoContent)
}

type queryRequest struct {
	Query string `json:"query"`
}

// PutAddDeviceQuery records the search box contents. The search itself runs
// after the debounce interval; poll GET /console/add-device for results.
func (h *Handler) PutAddDeviceQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}
	snap, err := h.console.AddDevice.SetQuery(req.Query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type selectRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	LocationID string `json:"location_id" binding:"required"`
}

func (h *Handler) SelectLocation(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}
	h.addDeviceAction(c, h.console.AddDevice.Select(req.UserID, req.LocationID))
}

func (h *Handler) ChangeSelection(c *gin.Context) {
	h.addDeviceAction(c, h.console.AddDevice.ChangeSelection())
}

func (h *Handler) PutAddDeviceForm(c *gin.Context) {
	var form console.DeviceForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}
	h.addDeviceAction(c, h.console.AddDevice.SetForm(form))
}

// SubmitAddDevice registers the device and answers with the reset flow and
// the refreshed devices page.
func (h *Handler) SubmitAddDevice(c *gin.Context) {
	if err := h.console.AddDevice.Submit(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"add_device": h.console.AddDevice.Snapshot(),
		"devices":    h.console.Devices.Snapshot(),
	})
}

func (h *Handler) addDeviceAction(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.console.AddDevice.Snapshot())
}
