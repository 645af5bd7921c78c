package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/focusmate/core/internal/pipeline"
)

var (
	processRecent bool
	processWindow int
)

// processCmd runs the pipeline for one message or the recent unread window.
var processCmd = &cobra.Command{
	Use:   "process [message-id]",
	Short: "Process incoming email",
	Long: `Run the processing pipeline: analyze the message, extract deadlines,
meetings and instructions, decide its priority and perform the category
action (task registration, calendar hold, flowchart, theme image).

With a message id, processes that single message. With --recent,
processes all unread messages in the configured window.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		processor, _ := pipeline.NewFromConfig(db, cfg)

		if len(args) == 1 {
			result, err := processor.ProcessMessage(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: processing failed: %v\n", err)
				os.Exit(1)
			}
			printResult(result)
			return
		}

		if !processRecent {
			fmt.Fprintln(os.Stderr, "Error: pass a message id or --recent")
			os.Exit(1)
		}

		window := processWindow
		if window <= 0 {
			window = cfg.WindowDays
		}

		// Stop submitting new messages on Ctrl-C; in-flight ones finish.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		batch, err := processor.ProcessRecent(ctx, window, cfg.MaxConcurrent)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: batch failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Processed: %d  Failed: %d  Skipped: %d\n",
			batch.Processed, batch.Failed, batch.Skipped)
	},
}

func init() {
	processCmd.Flags().BoolVar(&processRecent, "recent", false, "process unread messages in the recent window")
	processCmd.Flags().IntVar(&processWindow, "days", 0, "override the recent window in days")
}
