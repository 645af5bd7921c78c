package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Store and inspect mailbox and provider configuration.`,
}

// configSetIMAPCmd interactively stores IMAP credentials.
var configSetIMAPCmd = &cobra.Command{
	Use:   "set-imap",
	Short: "Store mailbox credentials",
	Long:  `Interactively store the IMAP host, port, username and password.`,
	Run: func(cmd *cobra.Command, args []string) {
		reader := bufio.NewReader(os.Stdin)

		fmt.Printf("IMAP host [%s]: ", cfg.IMAP.Host)
		host, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read input: %v\n", err)
			os.Exit(1)
		}
		if host = strings.TrimSpace(host); host != "" {
			cfg.IMAP.Host = host
		}
		if cfg.IMAP.Host == "" {
			fmt.Fprintln(os.Stderr, "Error: IMAP host is required")
			os.Exit(1)
		}

		fmt.Printf("IMAP port [%d]: ", cfg.IMAP.Port)
		portText, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read input: %v\n", err)
			os.Exit(1)
		}
		if portText = strings.TrimSpace(portText); portText != "" {
			port, err := strconv.Atoi(portText)
			if err != nil || port <= 0 || port > 65535 {
				fmt.Fprintln(os.Stderr, "Error: invalid port")
				os.Exit(1)
			}
			cfg.IMAP.Port = port
		}

		fmt.Printf("Username [%s]: ", cfg.IMAP.Username)
		username, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read input: %v\n", err)
			os.Exit(1)
		}
		if username = strings.TrimSpace(username); username != "" {
			cfg.IMAP.Username = username
		}

		fmt.Print("Password (input hidden): ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: failed to read password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		if password := string(passwordBytes); password != "" {
			cfg.IMAP.Password = password
		}

		path := filepath.Join(cfg.DataDir, "config.json")
		if err := cfg.Save(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved to %s\n", path)
	},
}

// configShowCmd prints the effective configuration with secrets redacted.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Database path: %s\n", cfg.DatabasePath)
		fmt.Printf("API port:      %s\n", cfg.APIPort)
		fmt.Printf("Log level:     %s\n", cfg.LogLevel)
		fmt.Printf("IMAP:          %s@%s:%d (ssl=%v, auth=%s)\n",
			cfg.IMAP.Username, cfg.IMAP.Host, cfg.IMAP.Port, cfg.IMAP.UseSSL, cfg.IMAP.AuthType)
		fmt.Printf("AI provider:   %s (model=%s)\n", cfg.AI.Provider, cfg.AI.Model)
		calendarState := "not configured"
		if cfg.Calendar.ClientID != "" && cfg.Calendar.RefreshToken != "" {
			calendarState = "configured (calendar=" + cfg.Calendar.CalendarID + ")"
		}
		fmt.Printf("Calendar:      %s\n", calendarState)
	},
}

func init() {
	configCmd.AddCommand(configSetIMAPCmd)
	configCmd.AddCommand(configShowCmd)
}
