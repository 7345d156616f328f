package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schichtbuch-backend/internal/mw"
)

// ToggleLike handles POST /api/entries/:id/like.
func (h *Handler) ToggleLike(c *gin.Context) {
	user, ok := mw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	if _, err := h.store.GetEntry(c.Request.Context(), entryID); err != nil {
		h.respondError(c, err)
		return
	}

	liked, err := h.store.ToggleLike(c.Request.Context(), entryID, user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	count, err := h.store.LikeCount(c.Request.Context(), entryID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}
