package main

import (
	"log"
	"os"
	"time"

	"github.com/focusmate/core/internal/api"
	"github.com/focusmate/core/internal/cli"
	"github.com/focusmate/core/internal/config"
	"github.com/focusmate/core/internal/database"
	"github.com/focusmate/core/internal/pipeline"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Check if running CLI command
	if len(os.Args) > 1 {
		cli.Execute(db, cfg)
		return
	}

	// Start API server
	processor, calendar := pipeline.NewFromConfig(db, cfg)
	router := api.SetupRouter(db, cfg, processor, calendar)

	// Periodic processing of the unread window (needs a mailbox)
	if cfg.IMAP.Host != "" {
		scheduler := pipeline.NewScheduler(processor, 2*time.Minute, cfg.WindowDays, cfg.MaxConcurrent)
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Printf("Starting FocusMate server on port %s", cfg.APIPort)
	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("Database path: %s", cfg.DatabasePath)
	if err := router.Run(":" + cfg.APIPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
