package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/osintdeck/osintdeck/internal/catalog"
	"github.com/osintdeck/osintdeck/internal/config"
	"github.com/osintdeck/osintdeck/internal/egress"
	"github.com/osintdeck/osintdeck/internal/log"
	"github.com/osintdeck/osintdeck/internal/provider"
)

// addConfigFlags registers the flags shared by serve and lookup.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .osintdeck in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each upstream request")
	cmd.Flags().Bool("tor", false,
		"Route all upstream traffic through Tor")
	cmd.Flags().StringP("external-tor", "e", "",
		"Use external Tor proxy at specified address instead of the embedded daemon (implies --tor)")
}

// loadConfig builds a Config from the config file and shared flags.
// Flags the user set explicitly override file values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	explicit := configPath != ""

	found := config.FindConfigFile(configPath)
	if found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", found, err)
		}
		cfg.ConfigFilePath = found
	} else if explicit {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	useTor, err := cmd.Flags().GetBool("tor")
	if err != nil {
		return nil, err
	}
	if useTor {
		cfg.UseTor = true
	}

	externalTor, err := cmd.Flags().GetString("external-tor")
	if err != nil {
		return nil, err
	}
	if externalTor != "" {
		cfg.UseTor = true
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = externalTor
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the structured logger. Lookup targets are
// personal data, so the secure handler masks credential-shaped values
// before they reach the log sink.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// newEgressClient builds the outbound HTTP client, optionally routed
// through Tor. The returned cleanup stops the embedded daemon when one
// was started; it is safe to call exactly once.
func newEgressClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*egress.Client, func(), error) {
	noop := func() {}

	if !cfg.UseTor {
		client, err := egress.NewClient(cfg.Timeout, egress.WithUserAgent(cfg.UserAgent))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		return client, noop, nil
	}

	if cfg.UseExternalTor {
		client, err := egress.NewClient(cfg.Timeout,
			egress.WithSOCKS5Proxy(cfg.TorProxyAddress),
			egress.WithUserAgent(cfg.UserAgent),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != egress.ProxyStatusOK {
			return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.TorProxyAddress)
		}
		logger.Info("Tor proxy connection verified", "address", cfg.TorProxyAddress)
		return client, noop, nil
	}

	fmt.Println("Starting embedded Tor daemon...")
	fmt.Printf("This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embedded := egress.NewEmbeddedTor(
		egress.WithStartupTimeout(cfg.TorStartupTimeout),
	)
	if err := embedded.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Info("embedded Tor daemon started", "socksAddr", embedded.SocksAddr())

	client, err := embedded.NewClient(cfg.Timeout, egress.WithUserAgent(cfg.UserAgent))
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}
	if status := client.CheckConnection(ctx); status != egress.ProxyStatusOK {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	cleanup := func() {
		logger.Info("stopping embedded Tor daemon...")
		if err := embedded.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}
	return client, cleanup, nil
}

// buildRegistry wires every provider adapter into a registry.
func buildRegistry(cfg *config.Config, client *egress.Client, logger *slog.Logger) *provider.Registry {
	httpClient := client.HTTPClient()
	maxBody := cfg.MaxBodySize

	source := catalog.NewLoader(cfg.CatalogURL, cfg.CatalogDir, cfg.CatalogTTL, httpClient, logger)

	registry := provider.NewRegistry()
	registry.Register(provider.NewWhois(httpClient, maxBody, logger))
	registry.Register(provider.NewCrtsh(httpClient, maxBody, logger))
	registry.Register(provider.NewUsername(httpClient, source, cfg.Concurrency, maxBody, logger))
	registry.Register(provider.NewGitHub(httpClient, maxBody, logger))
	registry.Register(provider.NewReddit(httpClient, maxBody, logger))
	registry.Register(provider.NewMastodon(httpClient, maxBody, logger))
	registry.Register(provider.NewTikTok(httpClient, maxBody, logger))
	registry.Register(provider.NewDiscord(httpClient, maxBody, logger))
	registry.Register(provider.NewGoogle(cfg.GHuntCommand, logger))
	registry.Register(provider.NewImage(httpClient, maxBody, logger))
	return registry
}
