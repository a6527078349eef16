package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/osintdeck/osintdeck/internal/config"
	"github.com/osintdeck/osintdeck/internal/model"
	"github.com/osintdeck/osintdeck/internal/orchestrator"
	"github.com/osintdeck/osintdeck/internal/report"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <topic> <input>",
		Short: "Run a one-shot lookup and print a report",
		Long: `Lookup runs every module for a topic against one identifier and
prints a combined report when all modules finish.

Topics:
  domain     WHOIS and certificate transparency (input: domain name)
  username   Site fan-out scan and Mastodon (input: username)
  github     GitHub profile and repositories (input: username)
  reddit     Reddit profile, submissions, comments (input: username)
  mastodon   Mastodon account or instance (input: username or instance)
  tiktok     TikTok video timestamp or profile (input: URL or username)
  discord    Discord account metadata (input: snowflake ID)
  google     Google account via ghunt (input: email address)
  image      EXIF metadata (input: image URL)

Examples:
  # Look up a domain
  osintdeck lookup domain example.com

  # Scan a username across hundreds of sites
  osintdeck lookup username jdoe

  # Decode a TikTok video timestamp
  osintdeck lookup tiktok https://www.tiktok.com/@user/video/7106594312292453675 --type video

  # JSON report written to a file
  osintdeck lookup github octocat --json -o octocat.json

  # Route the lookup through Tor
  osintdeck lookup domain example.com --tor`,
		Args: cobra.ExactArgs(2),
		RunE: runLookupCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("type", "",
		"Search sub-mode for topics that have one (tiktok: video|profile, mastodon: username|instance)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	searchType, err := cmd.Flags().GetString("type")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	topic, err := model.ParseTopic(strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runLookup(ctx, cfg, topic, args[1], searchType, logger)
}

// runLookup submits one request, collects the stream, and writes the
// report in the requested format.
func runLookup(ctx context.Context, cfg *config.Config, topic model.Topic, input, searchType string, logger *slog.Logger) error {
	client, cleanup, err := newEgressClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := buildRegistry(cfg, client, logger)
	orch := orchestrator.New(registry, cfg.Concurrency, cfg.Timeout, cfg.ProgressInterval, logger)

	req := model.NewSearchRequest(topic, input, searchType)

	fmt.Fprintf(os.Stderr, "Looking up %s %q...\n", topic, input)
	start := time.Now()

	events, err := orch.Submit(ctx, req)
	if err != nil {
		return err
	}

	// Cancel the in-flight request on interrupt so the stream
	// terminates and partial results are still reported.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = orch.Cancel(req.ID) //nolint:errcheck // Request may already be finished
		case <-done:
		}
	}()

	result := report.Collect(req, events)
	close(done)

	fmt.Fprintf(os.Stderr, "Lookup finished in %s\n\n", time.Since(start).Round(time.Millisecond))
	return outputReport(cfg, result)
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, result *report.Report) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain personal data; keep them owner-readable only
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(result)
	return err
}
