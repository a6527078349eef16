// Package main provides the entry point for the osintdeck CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for osintdeck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "osintdeck",
		Short: "Open-source intelligence aggregation over one identifier",
		Long: `osintdeck looks up one identifier across many upstream OSINT sources
concurrently: WHOIS and certificate transparency for domains, profile
APIs for usernames and account IDs, EXIF metadata for images.

Run "osintdeck serve" to expose per-topic WebSocket channels for a web
frontend, or "osintdeck lookup" for a one-shot terminal report.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
