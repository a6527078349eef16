package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/osintdeck/osintdeck/internal/catalog"
	"github.com/osintdeck/osintdeck/internal/model"
)

// usernameChunkSize is how many site probes complete between progress
// emissions.
const usernameChunkSize = 20

// CatalogSource yields the site catalog for a username scan.
type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Username fans a username out across the site catalog and reports each
// site where the account exists. This is the highest-volume provider:
// hundreds of probes per request, bounded by concurrency.
type Username struct {
	client      *http.Client
	source      CatalogSource
	concurrency int
	maxBodySize int64
	logger      *slog.Logger
}

// NewUsername creates the username fan-out adapter.
func NewUsername(client *http.Client, source CatalogSource, concurrency int, maxBodySize int64, logger *slog.Logger) *Username {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Username{
		client:      client,
		source:      source,
		concurrency: concurrency,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (u *Username) Name() string { return "whatsmyname" }

// Topic implements Provider.
func (u *Username) Topic() model.Topic { return model.TopicUsername }

// Search implements Provider. Emission order: a start marker with the
// catalog size, a site_found partial per hit as probes land, a progress
// update per completed chunk, then a terminal summary.
func (u *Username) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	cat, err := u.source.Load(ctx)
	if err != nil {
		perr := NewError(model.ErrorKindUpstream, "load site catalog: %v", err)
		if ctx.Err() != nil {
			perr = AsError(ctx.Err())
		}
		emit(model.Failure(u.Name(), perr.Kind, perr.Message))
		return perr
	}

	total := cat.Len()
	u.logger.Info("username scan start", "username", req.Input, "sites", total)
	emit(model.PartialSuccess(u.Name(), model.ScanStart{
		Module: u.Name(),
		Status: "start",
		Data:   model.ScanStartData{TotalSites: total},
	}))

	var (
		mu        sync.Mutex
		completed int
		hits      []model.SiteHit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, site := range cat.Sites {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			found, extracted := u.probe(gctx, site, req.Input)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if found {
				hits = append(hits, model.SiteHit{Site: site.Name, URL: site.PrettyURL(req.Input)})
				emit(model.PartialSuccess(u.Name(), model.SiteFound{
					Module: u.Name(),
					Type:   "site_found",
					Data: model.SiteFoundData{
						SiteName:      site.Name,
						URICheck:      site.CheckURL(req.Input),
						URIPretty:     site.PrettyURL(req.Input),
						Category:      site.Category,
						ExtractedInfo: extracted,
						Progress:      model.ScanProgress{Current: completed, Total: total},
					},
				}))
			}
			if completed%usernameChunkSize == 0 && completed < total {
				emit(model.Progress(u.Name(), completed, total,
					"Checked "+strconv.Itoa(completed)+" of "+strconv.Itoa(total)+" sites"))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		perr := AsError(err)
		emit(model.Failure(u.Name(), perr.Kind, perr.Message))
		return perr
	}

	// The chunked updates stop short of the catalog size, so the client
	// gets one final update that reads current == total.
	emit(model.Progress(u.Name(), total, total,
		"Checked "+strconv.Itoa(total)+" of "+strconv.Itoa(total)+" sites"))

	sort.Slice(hits, func(i, j int) bool { return hits[i].Site < hits[j].Site })
	u.logger.Info("username scan done", "username", req.Input, "found", len(hits), "sites", total)
	emit(model.Success(u.Name(), model.ScanComplete{
		Module: u.Name(),
		Type:   "complete",
		Data: model.ScanCompleteData{
			TotalFound: len(hits),
			TotalSites: total,
			FoundSites: hits,
		},
	}))
	return nil
}

// probe checks one site for the username. Detection follows the catalog
// contract: the existence code must match, the existence string must be
// present, and the miss string (when given) must be absent.
func (u *Username) probe(ctx context.Context, site catalog.Site, username string) (found bool, extracted string) {
	checkURL := site.CheckURL(username)

	var req *http.Request
	var err error
	if site.PostBody != "" {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, checkURL,
			strings.NewReader(site.RequestBody(username)))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	}
	if err != nil {
		return false, ""
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return false, ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != site.ECode {
		return false, ""
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, u.maxBodySize))
	if err != nil {
		return false, ""
	}
	body := string(raw)

	if site.EString != "" && !strings.Contains(body, site.EString) {
		return false, ""
	}
	if site.MString != "" && resp.StatusCode == site.MCode && strings.Contains(body, site.MString) {
		return false, ""
	}
	return true, extractTitle(body)
}

// extractTitle pulls the page title as a cheap human-readable hint for
// a positive hit.
func extractTitle(body string) string {
	lower := strings.ToLower(body)
	start := strings.Index(lower, "<title")
	if start < 0 {
		return ""
	}
	open := strings.Index(body[start:], ">")
	if open < 0 {
		return ""
	}
	start += open + 1
	end := strings.Index(lower[start:], "</title>")
	if end < 0 {
		return ""
	}
	title := strings.TrimSpace(body[start : start+end])
	if len(title) > 120 {
		cut := 120
		// Back off to a rune boundary so the cap never splits a
		// multi-byte character.
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut]
	}
	return title
}
