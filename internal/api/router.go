package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/focusmate/core/internal/api/handlers"
	"github.com/focusmate/core/internal/config"
	"github.com/focusmate/core/internal/pipeline"
	"github.com/focusmate/core/internal/providers"
	"github.com/focusmate/core/internal/services"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config, processor *pipeline.Processor, calendar providers.CalendarProvider) *gin.Engine {
	router := gin.Default()

	origins := strings.Split(cfg.CORSOrigins, ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	snapshotService := services.NewSnapshotService(db)
	logService := services.NewLogServiceWithLevel(db, cfg.LogLevel)

	emailHandler := handlers.NewEmailHandler(snapshotService, processor, logService, cfg)
	calendarHandler := handlers.NewCalendarHandler(calendar, logService)
	logHandler := handlers.NewLogHandler(logService)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		emails := api.Group("/emails")
		{
			emails.GET("", emailHandler.ListEmails)
			emails.GET("/search", emailHandler.SearchEmails)
			emails.GET("/:message_id", emailHandler.GetEmail)
			emails.POST("/process", emailHandler.ProcessEmails)
		}

		calendarGroup := api.Group("/calendar")
		{
			calendarGroup.GET("/events", calendarHandler.ListEvents)
		}

		api.GET("/logs", logHandler.ListLogs)
	}

	return router
}
