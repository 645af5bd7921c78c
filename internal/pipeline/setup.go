package pipeline

import (
	"log"

	"gorm.io/gorm"

	"github.com/focusmate/core/internal/config"
	"github.com/focusmate/core/internal/pipeline/ai"
	"github.com/focusmate/core/internal/providers"
	"github.com/focusmate/core/internal/services"
)

// NewFromConfig wires a processor from the application configuration. The
// calendar provider is nil when its credentials are missing; the processor
// then degrades calendar actions to notes.
func NewFromConfig(db *gorm.DB, cfg *config.Config) (*Processor, providers.CalendarProvider) {
	client := ai.NewClient()
	client.ConfigureWithBaseURL(cfg.AI.Provider, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
	if cfg.AI.ImageModel != "" {
		client.SetImageModel(cfg.AI.ImageModel)
	}

	mail := providers.NewIMAPProvider(cfg.IMAP)

	var calendar providers.CalendarProvider
	if gc, err := providers.NewGoogleCalendarProvider(cfg.Calendar); err == nil {
		calendar = gc
	} else {
		log.Printf("[Processor] Calendar disabled: %v", err)
	}

	snapshots := services.NewSnapshotService(db)
	logs := services.NewLogServiceWithLevel(db, cfg.LogLevel)

	var imageModel ThemeImageModel
	if cfg.AI.ImageModel != "" {
		imageModel = client
	}

	return NewProcessor(mail, calendar, client, client, imageModel, snapshots, logs), calendar
}
