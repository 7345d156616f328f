package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schichtbuch-backend/internal/mw"
)

// ListNotifications handles GET /api/notifications. Visiting the inbox marks
// all of the user's unread notifications as read in one batch; there is no
// per-notification acknowledgment.
func (h *Handler) ListNotifications(c *gin.Context) {
	user, ok := mw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	notifications, err := h.store.ListNotifications(c.Request.Context(), user.ID, true)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UnreadNotificationCount handles GET /api/notifications/unread-count,
// backing the header badge.
func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	user, ok := mw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	count, err := h.store.UnreadNotificationCount(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
