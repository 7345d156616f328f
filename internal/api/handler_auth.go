package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schichtbuch-backend/internal/auth"
	"schichtbuch-backend/internal/mw"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the credentials and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.store.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.IssueToken(h.jwtSecret, h.tokenTTL, user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword sets a new password for the authenticated user.
func (h *Handler) ChangePassword(c *gin.Context) {
	user, ok := mw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old_password and new_password (min. 8 characters) are required"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"old_password": "Das alte Passwort ist falsch."}})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
