package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"schichtbuch-backend/internal/auth"
	"schichtbuch-backend/internal/model"
	"schichtbuch-backend/internal/mw"
	"schichtbuch-backend/internal/store"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// sparePartData is the spare-part section of the entry detail, only rendered
// for users the visibility rule permits.
type sparePartData struct {
	UsedSpareParts bool              `json:"used_spare_parts"`
	Processed      bool              `json:"processed"`
	ProcessedBy    *int64            `json:"processed_by,omitempty"`
	ProcessedAt    *time.Time        `json:"processed_at,omitempty"`
	Parts          []model.SparePart `json:"parts"`
}

type entryDetailResponse struct {
	model.ShiftEntry
	LikeCount  int64          `json:"like_count"`
	SpareParts *sparePartData `json:"spare_parts,omitempty"`
}

// CreateEntry handles POST /api/entries (multipart form).
func (h *Handler) CreateEntry(c *gin.Context) {
	user, ok := mw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	in, verr := parseEntryForm(c)
	if err := verr.OrNil(); err != nil {
		h.respondError(c, err)
		return
	}

	images, videos, err := h.saveUploads(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entry, mentions, err := h.store.CreateEntry(c.Request.Context(), user, in, images, videos)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.pool.DispatchMentions(user, mentions)

	c.JSON(http.StatusCreated, gin.H{"id": entry.ID})
}

// ListEntries handles GET /api/entries with filter and paging parameters.
func (h *Handler) ListEntries(c *gin.Context) {
	filter := store.EntryFilter{
		Status:   model.Status(c.Query("status")),
		Shift:    model.Shift(c.Query("shift")),
		Category: model.Category(c.Query("category")),
		Query:    c.Query("q"),
	}
	if raw := c.Query("machine_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid machine_id"})
			return
		}
		filter.MachineID = &id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date, use YYYY-MM-DD"})
			return
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date, use YYYY-MM-DD"})
			return
		}
		filter.To = &t
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	entries, total, err := h.store.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}

// GetEntry handles GET /api/entries/:id.
func (h *Handler) GetEntry(c *gin.Context) {
	user, ok := mw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	entry, err := h.store.GetEntry(c.Request.Context(), id)
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

// entryDetail assembles the detail response, applying the spare-part
// visibility rule: creator, admin/supervisor, or anyone who contributed an
// update. Evaluated fresh on every render.
func (h *Handler) entryDetail(c *gin.Context, user *model.User, entry *model.ShiftEntry) (*entryDetailResponse, error) {
	likeCount, err := h.store.LikeCount(c.Request.Context(), entry.ID)
	if err != nil {
		return nil, err
	}

	visible := entry.UserID == user.ID || auth.CapabilitiesFor(user.Role).ViewAllSpareParts
	if !visible {
		visible, err = h.store.HasUpdateBy(c.Request.Context(), entry.ID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	resp := &entryDetailResponse{ShiftEntry: *entry, LikeCount: likeCount}
	if visible {
		parts := entry.SpareParts
		if parts == nil {
			parts = []model.SparePart{}
		}
		resp.SpareParts = &sparePartData{
			UsedSpareParts: entry.UsedSpareParts,
			Processed:      entry.SparePartsProcessed,
			ProcessedBy:    entry.SparePartsProcessedBy,
			ProcessedAt:    entry.SparePartsProcessedAt,
			Parts:          parts,
		}
	}
	return resp, nil
}

// parseEntryForm reads the new-entry form fields. Parse failures become
// field-level validation errors; semantic validation happens in the store.
func parseEntryForm(c *gin.Context) (store.NewEntryInput, *store.ValidationError) {
	verr := store.NewValidationError()
	in := store.NewEntryInput{
		Shift:       model.Shift(c.PostForm("shift")),
		Category:    model.Category(c.PostForm("category")),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Status:      model.Status(c.PostForm("status")),
	}

	if raw := c.PostForm("date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			verr.Add("date", "Ungültiges Datum, Format JJJJ-MM-TT.")
		} else {
			in.Date = t
		}
	}
	if raw := c.PostForm("time"); raw != "" && !in.Date.IsZero() {
		t, err := time.Parse(timeLayout, raw)
		if err != nil {
			verr.Add("time", "Ungültige Uhrzeit, Format HH:MM.")
		} else {
			at := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
			in.EventTime = &at
		}
	}
	if raw := c.PostForm("machine_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			verr.Add("machine", "Ungültige Maschinen-ID.")
		} else {
			in.MachineID = id
		}
	}
	if raw := c.PostForm("duration_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("duration_minutes", "Bitte eine Zahl angeben.")
		} else {
			in.DurationMinutes = &n
		}
	}
	if raw := c.PostForm("priority"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("priority", "Bitte eine Zahl angeben.")
		} else {
			in.Priority = n
		}
	}

	return in, verr
}

// saveUploads streams the submitted image and video files to the media root.
func (h *Handler) saveUploads(c *gin.Context) (images, videos []store.MediaFile, err error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body means no attachments.
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	for _, fh := range form.File["images"] {
		path, err := h.media.SaveImage(fh)
		if err != nil {
			return nil, nil, err
		}
		images = append(images, store.MediaFile{Path: path, Comment: c.PostForm("image_comment")})
	}
	for _, fh := range form.File["videos"] {
		path, err := h.media.SaveVideo(fh)
		if err != nil {
			return nil, nil, err
		}
		videos = append(videos, store.MediaFile{Path: path, Comment: c.PostForm("video_comment")})
	}
	return images, videos, nil
}
