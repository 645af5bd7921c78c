package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/focusmate/core/internal/database/models"
	"github.com/focusmate/core/internal/services"
)

var (
	showCategory string
	showSearch   string
	showLimit    int
)

// showCmd lists processed emails from the snapshot store.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show processed emails",
	Long:  `List recent processed emails, filtered by category or keyword search.`,
	Run: func(cmd *cobra.Command, args []string) {
		snapshots := services.NewSnapshotService(db)

		var (
			emails []*models.ProcessedEmail
			err    error
		)
		switch {
		case showSearch != "":
			emails, err = snapshots.Search(showSearch, showLimit)
		case showCategory != "":
			emails, err = snapshots.LoadRecentByCategory(showCategory, showLimit)
		default:
			emails, err = snapshots.LoadRecent(showLimit)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load emails: %v\n", err)
			os.Exit(1)
		}

		if len(emails) == 0 {
			fmt.Println("No processed emails found.")
			return
		}
		for _, email := range emails {
			printResult(email)
			fmt.Println(strings.Repeat("-", 60))
		}
	},
}

func printResult(email *models.ProcessedEmail) {
	fmt.Printf("[%s] %s\n", strings.ToUpper(email.Classification), email.Subject)
	fmt.Printf("  From:     %s\n", email.Sender)
	fmt.Printf("  Priority: %s (%d) - %s\n", email.PriorityBucket, email.PriorityScore, email.PriorityReasoning)
	if email.Summary != "" {
		fmt.Printf("  Summary:  %s\n", email.Summary)
	}
	for _, note := range email.Notes {
		fmt.Printf("  * %s\n", note)
	}
	if email.CalendarEventLink != "" {
		fmt.Printf("  Calendar: %s\n", email.CalendarEventLink)
	}
	if email.Flowchart != "" {
		fmt.Printf("  Flowchart (%s): %s\n", email.FlowchartType, email.Flowchart)
	}
	if email.ThemeImage != "" {
		fmt.Printf("  Image:    %s\n", email.ThemeImage)
	}
}

func init() {
	showCmd.Flags().StringVar(&showCategory, "category", "", "filter by classification (task, article, instruction)")
	showCmd.Flags().StringVar(&showSearch, "search", "", "keyword search over subject, summary and notes")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "maximum number of results")
}
