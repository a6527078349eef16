package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osintdeck/osintdeck/internal/config"
	"github.com/osintdeck/osintdeck/internal/history"
	"github.com/osintdeck/osintdeck/internal/orchestrator"
	"github.com/osintdeck/osintdeck/internal/server"
	"github.com/osintdeck/osintdeck/internal/session"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the OSINT aggregation server",
		Long: `Serve starts the WebSocket and API server for web frontends.

Each topic gets its own session channel under /ws/<topic>. A client
submits a search over the channel and receives streamed results from
every module serving that topic, followed by exactly one terminal
event. A small JSON API exposes health and search history.

Examples:
  # Serve on the default address (127.0.0.1:8080)
  osintdeck serve

  # Serve on all interfaces
  osintdeck serve --addr 0.0.0.0:8080

  # Route all upstream lookups through Tor
  osintdeck serve --tor

  # Use a custom configuration file
  osintdeck serve -c myconfig.yaml`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("addr", "a", config.DefaultServerAddr,
		"Listen address in host:port format")
	cmd.Flags().Bool("no-history", false,
		"Disable search history persistence")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("addr") {
		cfg.ServerAddr, err = cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Shut down on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping...")
		cancel()
	}()

	return runServe(ctx, cfg, logger)
}

// runServe wires the full server stack and blocks until shutdown.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, cleanup, err := newEgressClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := buildRegistry(cfg, client, logger)

	var opts []orchestrator.Option
	var store *history.Store
	if cfg.SaveHistory {
		store, err = history.Open(cfg.HistoryDir, logger)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close history store", "error", err)
			}
		}()
		opts = append(opts, orchestrator.WithRecorder(store))
		logger.Info("history store opened", "dir", cfg.HistoryDir)
	}

	orch := orchestrator.New(registry, cfg.Concurrency, cfg.Timeout, cfg.ProgressInterval, logger, opts...)
	manager := session.NewManager(orch, logger)

	var reader server.HistoryReader
	if store != nil {
		reader = store
	}
	srv := server.New(cfg.ServerAddr, manager, registry, reader, logger)

	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"topics", registry.Topics(),
		"tor", client.Proxied(),
		"history", cfg.SaveHistory,
	)
	return srv.Run(ctx)
}
