package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".osintdeck"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML shape of the .osintdeck configuration file. Durations
// are strings ("15s", "2m") because yaml.v3 does not decode time.Duration
// natively; Apply parses them.
type File struct {
	ServerAddr        string `yaml:"serverAddr,omitempty"`
	Timeout           string `yaml:"timeout,omitempty"`
	Concurrency       int    `yaml:"concurrency,omitempty"`
	ProgressInterval  string `yaml:"progressInterval,omitempty"`
	CatalogURL        string `yaml:"catalogURL,omitempty"`
	CatalogDir        string `yaml:"catalogDir,omitempty"`
	CatalogTTL        string `yaml:"catalogTTL,omitempty"`
	Verbose           *bool  `yaml:"verbose,omitempty"`
	UseTor            *bool  `yaml:"useTor,omitempty"`
	UseExternalTor    *bool  `yaml:"useExternalTor,omitempty"`
	TorProxyAddress   string `yaml:"torProxyAddress,omitempty"`
	TorStartupTimeout string `yaml:"torStartupTimeout,omitempty"`
	HistoryDir        string `yaml:"historyDir,omitempty"`
	SaveHistory       *bool  `yaml:"saveHistory,omitempty"`
	UserAgent         string `yaml:"userAgent,omitempty"`
	MaxBodySize       int64  `yaml:"maxBodySize,omitempty"`
	GHuntCommand      string `yaml:"ghuntCommand,omitempty"`
}

// LoadConfigFile loads a configuration file from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply overlays the file's set fields onto cfg. String durations are
// parsed here so a malformed file fails loudly at startup rather than
// silently keeping a default.
func (f *File) Apply(cfg *Config) error {
	if f.ServerAddr != "" {
		cfg.ServerAddr = f.ServerAddr
	}
	if err := applyDuration(&cfg.Timeout, f.Timeout, "timeout"); err != nil {
		return err
	}
	if f.Concurrency != 0 {
		cfg.Concurrency = f.Concurrency
	}
	if err := applyDuration(&cfg.ProgressInterval, f.ProgressInterval, "progressInterval"); err != nil {
		return err
	}
	if f.CatalogURL != "" {
		cfg.CatalogURL = f.CatalogURL
	}
	if f.CatalogDir != "" {
		cfg.CatalogDir = f.CatalogDir
	}
	if err := applyDuration(&cfg.CatalogTTL, f.CatalogTTL, "catalogTTL"); err != nil {
		return err
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
	if f.UseTor != nil {
		cfg.UseTor = *f.UseTor
	}
	if f.UseExternalTor != nil {
		cfg.UseExternalTor = *f.UseExternalTor
	}
	if f.TorProxyAddress != "" {
		cfg.TorProxyAddress = f.TorProxyAddress
	}
	if err := applyDuration(&cfg.TorStartupTimeout, f.TorStartupTimeout, "torStartupTimeout"); err != nil {
		return err
	}
	if f.HistoryDir != "" {
		cfg.HistoryDir = f.HistoryDir
	}
	if f.SaveHistory != nil {
		cfg.SaveHistory = *f.SaveHistory
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != 0 {
		cfg.MaxBodySize = f.MaxBodySize
	}
	if f.GHuntCommand != "" {
		cfg.GHuntCommand = f.GHuntCommand
	}
	return nil
}

// applyDuration parses a duration string into dst when set.
func applyDuration(dst *time.Duration, value, field string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("config field %s: %w", field, err)
	}
	*dst = d
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .osintdeck in the current directory
// 3. Look for .osintdeck in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
