package cli

import (
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/focusmate/core/internal/config"
)

var (
	db  *gorm.DB
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "focusmate",
	Short: "FocusMate email assistant backend",
	Long: `FocusMate turns an overwhelming inbox into a short, prioritized
list of things to act on. It classifies incoming email, extracts
deadlines, meetings and step-by-step instructions, and schedules
calendar holds so nothing slips.

Examples:
  focusmate process --recent           # process unread messages
  focusmate process "<id@mail>"        # process one message
  focusmate show --category task       # show recent processed tasks
  focusmate show --search budget       # search processed emails
  focusmate config set-imap            # store mailbox credentials`,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) {
	db = database
	cfg = config

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
}
