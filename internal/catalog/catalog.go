package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// accountToken is the placeholder in catalog URL patterns that gets
// replaced with the searched username.
const accountToken = "{account}"

// cacheFileName is the name of the cached catalog file inside the
// configured cache directory.
const cacheFileName = "wmn-data.json"

// Catalog load errors.
var (
	// ErrEmptyCatalog is returned when the catalog parses but contains
	// no usable sites. A scan over zero sites is always a bug upstream,
	// so we refuse to proceed silently.
	ErrEmptyCatalog = errors.New("catalog contains no sites")

	// ErrUnavailable is returned when neither the network nor a cached
	// copy can produce a catalog.
	ErrUnavailable = errors.New("catalog unavailable: fetch failed and no cached copy exists")
)

// Site describes one platform the username scan probes.
// Field names follow the upstream catalog schema.
type Site struct {
	// Name is the human-readable platform name (e.g. "GitHub").
	Name string `json:"name"`

	// URICheck is the URL pattern probed for account existence.
	// It contains an {account} placeholder.
	URICheck string `json:"uri_check"`

	// URIPretty is an optional nicer URL to show users. Falls back to
	// URICheck when empty.
	URIPretty string `json:"uri_pretty,omitempty"`

	// PostBody, when set, means the probe is a POST with this body
	// (after {account} substitution) instead of a GET.
	PostBody string `json:"post_body,omitempty"`

	// ECode is the HTTP status expected when the account exists.
	ECode int `json:"e_code"`

	// EString is a substring expected in the body when the account exists.
	EString string `json:"e_string"`

	// MCode is the HTTP status expected when the account is missing.
	MCode int `json:"m_code"`

	// MString is a substring expected in the body when the account is missing.
	MString string `json:"m_string"`

	// Category is the upstream grouping (e.g. "social", "coding").
	Category string `json:"cat"`
}

// CheckURL returns the probe URL for the given username. The username
// is path-escaped so characters like "/" or "#" cannot rewrite the
// pattern's structure.
func (s Site) CheckURL(username string) string {
	return strings.ReplaceAll(s.URICheck, accountToken, url.PathEscape(username))
}

// PrettyURL returns the display URL for the given username, falling back
// to the probe URL when the site has no pretty pattern.
func (s Site) PrettyURL(username string) string {
	if s.URIPretty == "" {
		return s.CheckURL(username)
	}
	return strings.ReplaceAll(s.URIPretty, accountToken, url.PathEscape(username))
}

// RequestBody returns the POST body for the given username, or empty when
// the probe is a plain GET.
func (s Site) RequestBody(username string) string {
	if s.PostBody == "" {
		return ""
	}
	return strings.ReplaceAll(s.PostBody, accountToken, username)
}

// Catalog is a loaded site catalog.
type Catalog struct {
	// Sites are the scan targets, in upstream order.
	Sites []Site

	// FetchedAt records when the underlying data was downloaded.
	// For cache hits this is the cache file's modification time.
	FetchedAt time.Time
}

// Len returns the number of sites in the catalog.
func (c *Catalog) Len() int {
	return len(c.Sites)
}

// catalogFile mirrors the upstream JSON document. We only consume the
// site list; license and author metadata are skipped.
type catalogFile struct {
	Sites []Site `json:"sites"`
}

// Loader fetches and caches the site catalog.
type Loader struct {
	// url is the upstream catalog location.
	url string

	// cacheDir is where the cached copy lives. Created on demand.
	cacheDir string

	// ttl is how long the cached copy stays fresh.
	ttl time.Duration

	// client performs the fetch. Injected so egress routing and tests
	// both work.
	client *http.Client

	// logger receives cache and fetch diagnostics.
	logger *slog.Logger
}

// NewLoader creates a catalog loader.
// If logger is nil, slog.Default() is used.
func NewLoader(url, cacheDir string, ttl time.Duration, client *http.Client, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		url:      url,
		cacheDir: cacheDir,
		ttl:      ttl,
		client:   client,
		logger:   logger,
	}
}

// Load returns the site catalog, preferring a fresh cached copy, then the
// network, then a stale cached copy.
//
// Design decision: Stale-if-error rather than fail-fast. The catalog
// changes a few times a week; a username scan against a week-old copy is
// far more useful than no scan because GitHub was unreachable at startup.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	cachePath := filepath.Join(l.cacheDir, cacheFileName)

	if cat, ok := l.loadCache(cachePath, true); ok {
		l.logger.Debug("catalog cache hit", "path", cachePath, "sites", cat.Len())
		return cat, nil
	}

	cat, err := l.fetch(ctx)
	if err == nil {
		l.writeCache(cachePath, cat)
		return cat, nil
	}
	l.logger.Warn("catalog fetch failed, trying stale cache", "url", l.url, "error", err)

	if cat, ok := l.loadCache(cachePath, false); ok {
		l.logger.Info("serving stale catalog cache", "path", cachePath, "sites", cat.Len())
		return cat, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// fetch downloads and parses the upstream catalog.
func (l *Loader) fetch(ctx context.Context) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parse(data, time.Now())
}

// parse decodes catalog JSON and drops unusable entries.
func parse(data []byte, fetchedAt time.Time) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog parse: %w", err)
	}

	sites := make([]Site, 0, len(file.Sites))
	for _, s := range file.Sites {
		// A site without a URL pattern or existence marker cannot be
		// checked; skip rather than fail the whole catalog.
		if s.Name == "" || s.URICheck == "" || s.ECode == 0 {
			continue
		}
		sites = append(sites, s)
	}

	if len(sites) == 0 {
		return nil, ErrEmptyCatalog
	}

	return &Catalog{Sites: sites, FetchedAt: fetchedAt}, nil
}

// loadCache reads the cached catalog. When freshOnly is set, a copy older
// than the TTL is treated as a miss.
func (l *Loader) loadCache(path string, freshOnly bool) (*Catalog, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if freshOnly && time.Since(info.ModTime()) > l.ttl {
		return nil, false
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path is inside our own cache dir
	if err != nil {
		return nil, false
	}

	cat, err := parse(data, info.ModTime())
	if err != nil {
		l.logger.Warn("cached catalog is corrupt, ignoring", "path", path, "error", err)
		return nil, false
	}
	return cat, true
}

// writeCache stores the raw catalog for later runs. Failures are logged
// and swallowed: caching is an optimization, not a requirement.
func (l *Loader) writeCache(path string, cat *Catalog) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		l.logger.Warn("cannot create catalog cache dir", "path", path, "error", err)
		return
	}

	data, err := json.Marshal(catalogFile{Sites: cat.Sites})
	if err != nil {
		l.logger.Warn("cannot encode catalog cache", "error", err)
		return
	}

	// Write-then-rename so a crash never leaves a truncated cache.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		l.logger.Warn("cannot write catalog cache", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		l.logger.Warn("cannot finalize catalog cache", "path", path, "error", err)
	}
}
