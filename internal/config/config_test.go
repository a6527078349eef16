package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default ServerAddr is 127.0.0.1:8080", func(t *testing.T) {
		t.Parallel()
		if cfg.ServerAddr != "127.0.0.1:8080" {
			t.Errorf("expected ServerAddr to be '127.0.0.1:8080', got '%s'", cfg.ServerAddr)
		}
	})

	t.Run("default Timeout is 15 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 15*time.Second {
			t.Errorf("expected Timeout to be 15s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Concurrency is 20", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 20 {
			t.Errorf("expected Concurrency to be 20, got %d", cfg.Concurrency)
		}
	})

	t.Run("default ProgressInterval is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.ProgressInterval != 500*time.Millisecond {
			t.Errorf("expected ProgressInterval to be 500ms, got %v", cfg.ProgressInterval)
		}
	})

	t.Run("default CatalogTTL is 24 hours", func(t *testing.T) {
		t.Parallel()
		if cfg.CatalogTTL != 24*time.Hour {
			t.Errorf("expected CatalogTTL to be 24h, got %v", cfg.CatalogTTL)
		}
	})

	t.Run("default UseTor is false", func(t *testing.T) {
		t.Parallel()
		if cfg.UseTor {
			t.Error("expected UseTor to be false")
		}
	})

	t.Run("default TorStartupTimeout is 3 minutes", func(t *testing.T) {
		t.Parallel()
		if cfg.TorStartupTimeout != 3*time.Minute {
			t.Errorf("expected TorStartupTimeout to be 3m, got %v", cfg.TorStartupTimeout)
		}
	})

	t.Run("default SaveHistory is true", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to be true")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		return &Config{
			ServerAddr:  "127.0.0.1:8080",
			Timeout:     15 * time.Second,
			Concurrency: 20,
			CatalogURL:  "https://example.com/catalog.json",
		}
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("empty server address returns ErrNoServerAddr", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ServerAddr = ""
		if err := cfg.Validate(); !errors.Is(err, ErrNoServerAddr) {
			t.Errorf("expected ErrNoServerAddr, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("zero concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Concurrency = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})

	t.Run("negative progress interval returns ErrInvalidProgressInterval", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ProgressInterval = -time.Millisecond
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidProgressInterval) {
			t.Errorf("expected ErrInvalidProgressInterval, got %v", err)
		}
	})

	t.Run("empty catalog URL returns ErrNoCatalogURL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CatalogURL = ""
		if err := cfg.Validate(); !errors.Is(err, ErrNoCatalogURL) {
			t.Errorf("expected ErrNoCatalogURL, got %v", err)
		}
	})

	t.Run("both report formats returns ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true
		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("negative max body size returns ErrInvalidMaxBodySize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxBodySize = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})
}

// TestLoadConfigFile tests loading and applying the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("serverAddr: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML, got nil")
		}
	})

	t.Run("set fields overlay defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `serverAddr: "0.0.0.0:9090"
timeout: "30s"
concurrency: 50
useTor: true
saveHistory: false
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error: %v", err)
		}

		cfg := NewConfig()
		if err := f.Apply(cfg); err != nil {
			t.Fatalf("Apply() error: %v", err)
		}

		if cfg.ServerAddr != "0.0.0.0:9090" {
			t.Errorf("ServerAddr = %q, want 0.0.0.0:9090", cfg.ServerAddr)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
		}
		if cfg.Concurrency != 50 {
			t.Errorf("Concurrency = %d, want 50", cfg.Concurrency)
		}
		if !cfg.UseTor {
			t.Error("UseTor = false, want true")
		}
		if cfg.SaveHistory {
			t.Error("SaveHistory = true, want false")
		}
		// Unset fields keep their defaults.
		if cfg.ProgressInterval != DefaultProgressInterval {
			t.Errorf("ProgressInterval = %v, want default %v", cfg.ProgressInterval, DefaultProgressInterval)
		}
	})

	t.Run("malformed duration fails Apply", func(t *testing.T) {
		t.Parallel()
		f := &File{Timeout: "soon"}
		if err := f.Apply(NewConfig()); err == nil {
			t.Error("expected error for malformed duration, got nil")
		}
	})
}

// TestFindConfigFile tests the configuration file search order.
func TestFindConfigFile(t *testing.T) {
	t.Run("explicit path that exists is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("verbose: true\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q, want same path", path, got)
		}
	})

	t.Run("explicit path that does not exist returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})

	t.Run("file in current directory is found", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("verbose: true\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Chdir(dir)
		got := FindConfigFile("")
		// Resolve symlinks so macOS /var vs /private/var both pass.
		wantResolved, _ := filepath.EvalSymlinks(path)
		gotResolved, _ := filepath.EvalSymlinks(got)
		if gotResolved != wantResolved {
			t.Errorf("FindConfigFile(\"\") = %q, want %q", got, path)
		}
	})
}
