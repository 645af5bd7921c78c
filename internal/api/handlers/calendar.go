package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/focusmate/core/internal/database/models"
	"github.com/focusmate/core/internal/providers"
	"github.com/focusmate/core/internal/services"
)

// CalendarHandler serves calendar event listings.
type CalendarHandler struct {
	calendar   providers.CalendarProvider
	logService *services.LogService
}

// NewCalendarHandler creates a new CalendarHandler instance
func NewCalendarHandler(calendar providers.CalendarProvider, logService *services.LogService) *CalendarHandler {
	return &CalendarHandler{
		calendar:   calendar,
		logService: logService,
	}
}

// ListEvents returns calendar events in a time window (defaults to the next
// 7 days).
// GET /api/calendar/events?from=2025-03-01T00:00:00Z&to=2025-03-08T00:00:00Z
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	if h.calendar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar not configured"})
		return
	}

	now := time.Now()
	from := now
	to := now.AddDate(0, 0, 7)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		to = t
	}

	events, err := h.calendar.ListEvents(from, to)
	if err != nil {
		h.logService.LogError(models.LogModuleCalendar, "list", "Event listing failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
