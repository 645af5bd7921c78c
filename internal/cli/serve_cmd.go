package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusmate/core/internal/api"
	"github.com/focusmate/core/internal/pipeline"
)

// serveCmd starts the API server with the periodic processing scheduler.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and the periodic processing scheduler.`,
	Run: func(cmd *cobra.Command, args []string) {
		processor, calendar := pipeline.NewFromConfig(db, cfg)
		router := api.SetupRouter(db, cfg, processor, calendar)

		if cfg.IMAP.Host != "" {
			scheduler := pipeline.NewScheduler(processor, 2*time.Minute, cfg.WindowDays, cfg.MaxConcurrent)
			scheduler.Start()
			defer scheduler.Stop()
		}

		fmt.Printf("Starting FocusMate server on port %s\n", cfg.APIPort)
		if err := router.Run(":" + cfg.APIPort); err != nil {
			fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
