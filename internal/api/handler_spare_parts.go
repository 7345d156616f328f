package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schichtbuch-backend/internal/auth"
	"schichtbuch-backend/internal/mw"
)

// ToggleSparePartsProcessed handles POST /api/entries/:id/spare-parts/processed.
// Only users who may process SAP bookings can flip the flag. Denials and
// no-ops both answer with the unchanged detail view instead of an error.
func (h *Handler) ToggleSparePartsProcessed(c *gin.Context) {
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

	if !auth.CapabilitiesFor(user.Role).ProcessSpareParts {
		entry, err := h.store.GetEntry(c.Request.Context(), entryID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp, err := h.entryDetail(c, user, entry)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if _, _, err := h.store.ToggleSparePartsProcessed(c.Request.Context(), user, entryID); err != nil {
		h.respondError(c, err)
		return
	}

	entry, err := h.store.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp, err := h.entryDetail(c, user, entry)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
