package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Dashboard handles GET /api/dashboard: entry counts for today, the current
// week, open and done entries, plus the latest entries.
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.store.DashboardStats(c.Request.Context(), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
