package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/view"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login signs the operator in and starts from a clean console.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusBadGateway
		var reqErr *adminapi.RequestError
		if errors.As(err, &reqErr) && reqErr.Status >= 400 && reqErr.Status < 500 {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.Reset()
	body := gin.H{"user": view.NewUser(res.User)}
	if identity, ok := h.session.Identity(); ok {
		body["identity"] = identity
	}
	c.JSON(http.StatusOK, body)
}

// Logout forgets the token and everything loaded with it.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.session.Logout(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.Reset()
	c.Status(http.StatusNoContent)
}

// GetSession reports whether a token is held and who it belongs to.
func (h *Handler) GetSession(c *gin.Context) {
	body := gin.H{"authenticated": h.session.Authenticated()}
	if identity, ok := h.session.Identity(); ok {
		body["identity"] = identity
	}
	if !h.session.Authenticated() {
		body["redirect"] = h.loginRoute
	}
	c.JSON(http.StatusOK, body)
}
