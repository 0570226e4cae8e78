package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/25-26J-299/smartrose-admin/internal/console"
)

// OpenReview opens the review modal for the user in the path.
func (h *Handler) OpenReview(c *gin.Context) {
	snap := h.console.Review.Open(c.Request.Context(), c.Param("id"))
	h.render(c, snap.Err(), snap)
}

func (h *Handler) GetReview(c *gin.Context) {
	c.JSON(http.StatusOK, h.console.Review.Snapshot())
}

func (h *Handler) CloseReview(c *gin.Context) {
	h.console.Review.Close()
	c.Status(http.StatusNoContent)
}

// ReloadReview retries a failed load.
func (h *Handler) ReloadReview(c *gin.Context) {
	snap, err := h.console.Review.Reload(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, snap.Err(), snap)
}

func (h *Handler) EditReview(c *gin.Context) {
	h.reviewAction(c, h.console.Review.Edit())
}

func (h *Handler) CancelReview(c *gin.Context) {
	h.reviewAction(c, h.console.Review.Cancel())
}

// PutReviewDraft merges edits into the open drafts.
func (h *Handler) PutReviewDraft(c *gin.Context) {
	var patch console.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}
	h.reviewAction(c, h.console.Review.UpdateDraft(patch))
}

func (h *Handler) SaveReview(c *gin.Context) {
	h.reviewAction(c, h.console.Review.Save(c.Request.Context()))
}

func (h *Handler) ApproveUser(c *gin.Context) {
	h.reviewDecision(c, h.console.Review.Approve(c.Request.Context()))
}

func (h *Handler) RejectUser(c *gin.Context) {
	h.reviewDecision(c, h.console.Review.Reject(c.Request.Context()))
}

func (h *Handler) reviewAction(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.console.Review.Snapshot())
}

// reviewDecision answers with the closed modal and the refreshed users list.
func (h *Handler) reviewDecision(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"review": h.console.Review.Snapshot(),
		"users":  h.console.Users.Snapshot(),
	})
}
