package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/focusmate/core/internal/config"
	"github.com/focusmate/core/internal/database/models"
	"github.com/focusmate/core/internal/pipeline"
	"github.com/focusmate/core/internal/services"
)

// EmailHandler serves processed-email snapshots and triggers processing.
type EmailHandler struct {
	snapshotService *services.SnapshotService
	processor       *pipeline.Processor
	logService      *services.LogService
	cfg             *config.Config
}

// NewEmailHandler creates a new EmailHandler instance
func NewEmailHandler(snapshotService *services.SnapshotService, processor *pipeline.Processor, logService *services.LogService, cfg *config.Config) *EmailHandler {
	return &EmailHandler{
		snapshotService: snapshotService,
		processor:       processor,
		logService:      logService,
		cfg:             cfg,
	}
}

// ListEmails returns recent processed emails, optionally filtered by
// category.
// GET /api/emails?category=task&limit=20
func (h *EmailHandler) ListEmails(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	category := c.Query("category")

	var (
		emails []*models.ProcessedEmail
		err    error
	)
	if category != "" {
		emails, err = h.snapshotService.LoadRecentByCategory(category, limit)
	} else {
		emails, err = h.snapshotService.LoadRecent(limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load emails"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": emails, "count": len(emails)})
}

// SearchEmails returns processed emails matching a keyword query.
// GET /api/emails/search?q=budget&limit=20
func (h *EmailHandler) SearchEmails(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	emails, err := h.snapshotService.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": emails, "count": len(emails)})
}

// GetEmail returns one processed email by message id.
// GET /api/emails/:message_id
func (h *EmailHandler) GetEmail(c *gin.Context) {
	messageID := c.Param("message_id")

	email, err := h.snapshotService.Load(messageID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}
	c.JSON(http.StatusOK, email)
}

// ProcessRequest triggers processing of one message or a recent batch.
type ProcessRequest struct {
	MessageID  string `json:"message_id"`
	WindowDays int    `json:"window_days"`
}

// ProcessEmails runs the pipeline for one message id, or for the recent
// unread window when no id is given.
// POST /api/emails/process
func (h *EmailHandler) ProcessEmails(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.MessageID != "" {
		result, err := h.processor.ProcessMessage(req.MessageID)
		if err != nil {
			h.logService.LogError(models.LogModuleAPI, "process", "Processing failed", map[string]interface{}{
				"message_id": req.MessageID,
				"error":      err.Error(),
			})
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = h.cfg.WindowDays
	}
	batch, err := h.processor.ProcessRecent(c.Request.Context(), windowDays, h.cfg.MaxConcurrent)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, batch)
}
