package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"schichtbuch-backend/internal/logger"
	"schichtbuch-backend/internal/media"
	"schichtbuch-backend/internal/notification"
	"schichtbuch-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	media     *media.Storage
	pool      *notification.WorkerPool
	webpush   *webpush.Options
	jwtSecret string
	tokenTTL  time.Duration
	log       *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, m *media.Storage, pool *notification.WorkerPool, webpushOptions *webpush.Options, jwtSecret string, ttl time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		store:     s,
		media:     m,
		pool:      pool,
		webpush:   webpushOptions,
		jwtSecret: jwtSecret,
		tokenTTL:  ttl,
		log:       log.With("component", "api"),
	}
}

// respondError maps store errors onto the HTTP taxonomy: validation errors
// become field-level messages, missing records a plain 404, everything else
// an internal error.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
