package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/osintdeck/osintdeck/internal/config"
	"github.com/osintdeck/osintdeck/internal/history"
	"github.com/osintdeck/osintdeck/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded searches",
		Long: `History lists searches recorded by the server and the lookup command.

Examples:
  # Show the 20 most recent searches
  osintdeck history

  # Show every recorded search for one target
  osintdeck history --topic github --input octocat

  # Delete records older than 30 days
  osintdeck history prune --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().String("topic", "", "Filter by topic (requires --input)")
	cmd.Flags().String("input", "", "Filter by exact input (requires --topic)")
	cmd.Flags().String("data-dir", "", "History database directory (default: XDG data directory)")

	cmd.AddCommand(newHistoryPruneCmd())
	return cmd
}

// newHistoryPruneCmd creates the history prune subcommand.
func newHistoryPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old search records",
		Args:  cobra.NoArgs,
		RunE:  runHistoryPruneCmd,
	}

	cmd.Flags().Duration("older-than", 30*24*time.Hour,
		"Delete records submitted longer ago than this")
	cmd.Flags().String("data-dir", "", "History database directory (default: XDG data directory)")
	return cmd
}

// openHistoryStore opens the store at the flag-selected directory.
func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = config.XDGDataDir()
	}

	logger := setupLogger(getVerboseFlag(cmd))
	return history.Open(dataDir, logger)
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	topicArg, err := cmd.Flags().GetString("topic")
	if err != nil {
		return err
	}
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}
	if (topicArg == "") != (input == "") {
		return fmt.Errorf("--topic and --input must be used together")
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	var entries []history.Entry
	if topicArg != "" {
		topic, err := model.ParseTopic(strings.ToLower(topicArg))
		if err != nil {
			return err
		}
		entries, err = store.ByTarget(cmd.Context(), topic, input)
		if err != nil {
			return err
		}
	} else {
		entries, err = store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded searches.")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-9s %-10s %s",
			e.SubmittedAt.Local().Format("2006-01-02 15:04"),
			e.Topic, e.Status, e.Input)
		if e.Failures > 0 {
			line += fmt.Sprintf("  (%d error(s))", e.Failures)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

// runHistoryPruneCmd executes the history prune subcommand.
func runHistoryPruneCmd(cmd *cobra.Command, _ []string) error {
	olderThan, err := cmd.Flags().GetDuration("older-than")
	if err != nil {
		return err
	}
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	n, err := store.Prune(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s).\n", n)
	return nil
}
