package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"schichtbuch-backend/internal/model"
	"schichtbuch-backend/internal/mw"
	"schichtbuch-backend/internal/store"
)

// CreateUpdate handles POST /api/entries/:id/updates (multipart form). An
// update may change the entry status and record spare-part consumption; it
// always appends an immutable history row.
func (h *Handler) CreateUpdate(c *gin.Context) {
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

	in, verr := parseUpdateForm(c)
	if err := verr.OrNil(); err != nil {
		h.respondError(c, err)
		return
	}

	images, videos, err := h.saveUploads(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	update, mentions, err := h.store.AppendUpdate(c.Request.Context(), user, entryID, in, images, videos)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.pool.DispatchMentions(user, mentions)

	c.JSON(http.StatusCreated, update)
}

// parseUpdateForm reads the update form fields including the optional
// spare-part usage block.
func parseUpdateForm(c *gin.Context) (store.EntryUpdateInput, *store.ValidationError) {
	verr := store.NewValidationError()
	in := store.EntryUpdateInput{
		Comment: c.PostForm("comment"),
	}

	if raw := c.PostForm("action_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			verr.Add("action_time", "Ungültiger Zeitpunkt, Format RFC3339.")
		} else {
			in.ActionTime = t
		}
	}
	if raw := c.PostForm("status"); raw != "" {
		st := model.Status(raw)
		in.NewStatus = &st
	}

	if c.PostForm("used_spare_parts") == "true" || c.PostForm("used_spare_parts") == "1" {
		usage := &store.SparePartUsage{
			Used:        true,
			SAPNumber:   c.PostForm("sap_number"),
			Description: c.PostForm("spare_part_description"),
		}
		if raw := c.PostForm("quantity_used"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				verr.Add("quantity_used", "Bitte eine Zahl angeben.")
			} else {
				usage.QuantityUsed = n
			}
		}
		if raw := c.PostForm("quantity_remaining"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				verr.Add("quantity_remaining", "Bitte eine Zahl angeben.")
			} else {
				usage.QuantityRemaining = &n
			}
		}
		in.SparePart = usage
	}

	return in, verr
}
