package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/focusmate/core/internal/services"
)

// LogHandler serves stored log entries.
type LogHandler struct {
	logService *services.LogService
}

// NewLogHandler creates a new LogHandler instance
func NewLogHandler(logService *services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// ListLogs returns recent log entries, optionally filtered.
// GET /api/logs?level=ERROR&module=pipeline&limit=50
func (h *LogHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.logService.GetLogs(c.Query("level"), c.Query("module"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
