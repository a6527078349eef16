package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on the characteristics of the upstream
// services the providers talk to and the size of the site catalog.
const (
	// DefaultServerAddr is the default listen address for the API and
	// session-channel server. Binding to localhost by default keeps an
	// unconfigured instance off the open network.
	DefaultServerAddr = "127.0.0.1:8080"

	// DefaultTimeout is the per-unit budget for one provider request.
	// Upstream OSINT APIs usually answer within a few seconds; 15 seconds
	// covers slow registries without letting one site stall a whole scan.
	DefaultTimeout = 15 * time.Second

	// DefaultConcurrency is the worker-pool size for the username fan-out
	// scan. 20 concurrent probes keeps a 500-site catalog under a minute
	// without looking like a flood to any single host.
	DefaultConcurrency = 20

	// DefaultProgressInterval is the minimum spacing between coalesced
	// search_progress events. 500ms keeps clients responsive without
	// flooding slow channels during large scans.
	DefaultProgressInterval = 500 * time.Millisecond

	// DefaultCatalogURL is the canonical WhatsMyName site catalog.
	DefaultCatalogURL = "https://raw.githubusercontent.com/WebBreacher/WhatsMyName/main/wmn-data.json"

	// DefaultCatalogTTL is how long a cached catalog stays fresh before
	// a refetch is attempted. The upstream catalog changes a few times a
	// week; 24 hours keeps startups fast and reasonably current.
	DefaultCatalogTTL = 24 * time.Hour

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution overhead
	// and potential issues with IPv6 resolution on some systems.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap. 3 minutes is typically sufficient for most
	// network conditions, but may need to be increased for slow connections.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "osintdeck"

	// DefaultUserAgent identifies the tool in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify lookup traffic in their logs.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for any API response or image header while
	// preventing memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultGHuntCommand is the external collaborator invoked for Google
	// account lookups. Must be on PATH or configured explicitly.
	DefaultGHuntCommand = "ghunt"
)

// Config holds all configuration options for the server and the one-shot
// lookup command. It is populated from the config file and CLI flags and
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ServerConfig, EgressConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// ServerAddr is the listen address for the HTTP server in
	// "host:port" format.
	ServerAddr string `yaml:"serverAddr,omitempty"`

	// Timeout is the budget for one provider unit: a single upstream
	// request plus parsing. Units that exceed it fail with a timeout
	// rather than stalling the whole request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Concurrency is the worker-pool size for the username fan-out scan.
	// Higher values finish large catalogs faster but probe more hosts
	// at once.
	Concurrency int `yaml:"concurrency,omitempty"`

	// ProgressInterval is the minimum spacing between search_progress
	// events during long scans. Individual site hits are never delayed.
	ProgressInterval time.Duration `yaml:"progressInterval,omitempty"`

	// CatalogURL is where the site catalog is fetched from.
	CatalogURL string `yaml:"catalogURL,omitempty"`

	// CatalogDir is the directory for the cached catalog copy.
	// Defaults to the XDG cache directory.
	CatalogDir string `yaml:"catalogDir,omitempty"`

	// CatalogTTL is how long the cached catalog stays fresh.
	CatalogTTL time.Duration `yaml:"catalogTTL,omitempty"`

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool `yaml:"verbose,omitempty"`

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .osintdeck in the current directory
	// and then in the user's home directory.
	ConfigFilePath string `yaml:"-"`

	// UseTor routes all provider traffic through a Tor SOCKS5 proxy.
	// Useful when lookups must not originate from the operator's address.
	UseTor bool `yaml:"useTor,omitempty"`

	// UseExternalTor disables the embedded Tor daemon and uses an
	// external proxy at TorProxyAddress. Only meaningful with UseTor.
	UseExternalTor bool `yaml:"useExternalTor,omitempty"`

	// TorProxyAddress is the address of the Tor SOCKS5 proxy in
	// "host:port" format. Only used when UseTor and UseExternalTor
	// are both set.
	TorProxyAddress string `yaml:"torProxyAddress,omitempty"`

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to start and bootstrap. Only used when UseExternalTor is false.
	TorStartupTimeout time.Duration `yaml:"torStartupTimeout,omitempty"`

	// HistoryDir is the directory path for storing the SQLite database.
	// When set, completed searches are recorded for later review.
	// When empty, defaults to the XDG data directory.
	HistoryDir string `yaml:"historyDir,omitempty"`

	// SaveHistory indicates whether to record completed searches.
	SaveHistory bool `yaml:"saveHistory,omitempty"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	// Several upstream sites answer differently (or not at all) to
	// non-browser agents, so the default imitates a browser.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// GHuntCommand is the executable invoked for Google account lookups.
	GHuntCommand string `yaml:"ghuntCommand,omitempty"`

	// JSONReport enables JSON report output for the lookup command.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool `yaml:"-"`

	// MarkdownReport enables Markdown report output for the lookup command.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool `yaml:"-"`

	// ReportFile is the output file path for lookup reports.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string `yaml:"-"`
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, worker
// counts). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ServerAddr:        DefaultServerAddr,
		Timeout:           DefaultTimeout,
		Concurrency:       DefaultConcurrency,
		ProgressInterval:  DefaultProgressInterval,
		CatalogURL:        DefaultCatalogURL,
		CatalogDir:        XDGCacheDir(),
		CatalogTTL:        DefaultCatalogTTL,
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		HistoryDir:        XDGDataDir(),
		SaveHistory:       true,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		GHuntCommand:      DefaultGHuntCommand,
	}
}

// XDGDataDir returns the XDG data directory for the application.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/osintdeck
// On macOS: ~/Library/Application Support/osintdeck
// On Windows: %LOCALAPPDATA%\osintdeck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the application.
// On Linux: ~/.config/osintdeck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the application.
// On Linux: ~/.cache/osintdeck
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before the server or a lookup
// starts.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		return ErrNoServerAddr
	}

	// Timeout must be positive; zero timeout would fail every unit
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Concurrency must be positive; zero would stall the fan-out scan
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.ProgressInterval < 0 {
		return ErrInvalidProgressInterval
	}

	if c.CatalogURL == "" {
		return ErrNoCatalogURL
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
