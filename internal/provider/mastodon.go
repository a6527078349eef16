package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/osintdeck/osintdeck/internal/model"
)

const (
	// defaultMastodonAPIBaseURL is the flagship instance whose search API
	// covers most federated accounts.
	defaultMastodonAPIBaseURL = "https://mastodon.social"

	// defaultFediverseCatalogURL lists known fediverse instances with
	// per-instance probe patterns.
	defaultFediverseCatalogURL = "https://raw.githubusercontent.com/C3n7ral051nt4g3ncy/Masto/master/fediverse_instances.json"

	// mastodonSweepConcurrency bounds the instance sweep.
	mastodonSweepConcurrency = 15

	// mastodonSweepMaxMatches stops the sweep early once enough
	// instances confirm the username. More adds latency, not signal.
	mastodonSweepMaxMatches = 5
)

// Mastodon serves two search types: "username" (directory search plus a
// sweep across known fediverse instances) and "instance" (one instance's
// public metadata).
//
// This is a multi-part provider in username mode: the directory result
// and the sweep result arrive as separate emissions.
type Mastodon struct {
	client       *http.Client
	apiBaseURL   string
	catalogURL   string
	instLookupFn func(instance string) string
	maxBodySize  int64
	logger       *slog.Logger
}

// NewMastodon creates the Mastodon adapter.
func NewMastodon(client *http.Client, maxBodySize int64, logger *slog.Logger) *Mastodon {
	return &Mastodon{
		client:     client,
		apiBaseURL: defaultMastodonAPIBaseURL,
		catalogURL: defaultFediverseCatalogURL,
		instLookupFn: func(instance string) string {
			return "https://" + instance + "/api/v1/instance"
		},
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (m *Mastodon) Name() string { return "mastodon" }

// Topic implements Provider.
func (m *Mastodon) Topic() model.Topic { return model.TopicMastodon }

// Search implements Provider.
func (m *Mastodon) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	if req.SearchType == "instance" {
		return m.searchInstance(ctx, req.Input, emit)
	}
	return m.searchUsername(ctx, req.Input, emit)
}

// mastodonAccount is the account object returned by the search and
// instance APIs.
type mastodonAccount struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Acct           string `json:"acct"`
	DisplayName    string `json:"display_name"`
	Locked         bool   `json:"locked"`
	Bot            bool   `json:"bot"`
	Discoverable   bool   `json:"discoverable"`
	Group          bool   `json:"group"`
	CreatedAt      string `json:"created_at"`
	Note           string `json:"note"`
	URL            string `json:"url"`
	Avatar         string `json:"avatar"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	StatusesCount  int    `json:"statuses_count"`
	LastStatusAt   string `json:"last_status_at"`
	Fields         []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"fields"`
}

// searchUsername runs the directory search and the instance sweep.
func (m *Mastodon) searchUsername(ctx context.Context, username string, emit EmitFunc) error {
	m.logger.Debug("mastodon username lookup", "username", username)

	account, apiErr := m.directorySearch(ctx, username)
	if apiErr == nil {
		emit(model.PartialSuccess(m.Name(), model.MastodonAPIResult{APIData: account}))
	} else {
		m.logger.Debug("mastodon directory search missed", "username", username, "error", apiErr.Message)
	}

	matches, sweepErr := m.instanceSweep(ctx, username)
	if sweepErr != nil && apiErr != nil {
		// Both legs failed; surface the more specific of the two.
		perr := apiErr
		if apiErr.Kind == model.ErrorKindNotFound {
			perr = sweepErr
		}
		emit(model.Failure(m.Name(), perr.Kind, perr.Message))
		return perr
	}

	if apiErr != nil && len(matches) == 0 {
		perr := NewError(model.ErrorKindNotFound, "username %q not found on Mastodon", username)
		emit(model.Failure(m.Name(), perr.Kind, perr.Message))
		return perr
	}

	emit(model.Success(m.Name(), model.MastodonInstancesResult{Instances: matches}))
	return nil
}

// directorySearch queries the flagship instance's search API and picks
// the exact username match.
func (m *Mastodon) directorySearch(ctx context.Context, username string) (*model.MastodonAccount, *Error) {
	searchURL := m.apiBaseURL + "/api/v2/search?q=" + url.QueryEscape(username)

	var result struct {
		Accounts []mastodonAccount `json:"accounts"`
	}
	if perr := getJSON(ctx, m.client, searchURL, nil, m.maxBodySize, &result); perr != nil {
		return nil, perr
	}

	for _, acct := range result.Accounts {
		if strings.EqualFold(acct.Username, username) {
			normalized := m.normalizeAccount(acct)
			return &normalized, nil
		}
	}
	return nil, NewError(model.ErrorKindNotFound, "username %q not found in directory", username)
}

// normalizeAccount converts an API account into the model payload,
// stripping HTML from the bio and resolving verified field links.
func (m *Mastodon) normalizeAccount(acct mastodonAccount) model.MastodonAccount {
	out := model.MastodonAccount{
		UserID:         acct.ID,
		ProfileURL:     acct.URL,
		Locked:         acct.Locked,
		Username:       acct.Username,
		Acct:           acct.Acct,
		DisplayName:    acct.DisplayName,
		CreatedAt:      acct.CreatedAt,
		Bot:            acct.Bot,
		Discoverable:   acct.Discoverable,
		FollowersCount: acct.FollowersCount,
		FollowingCount: acct.FollowingCount,
		StatusesCount:  acct.StatusesCount,
		LastStatusAt:   acct.LastStatusAt,
		Group:          acct.Group,
		Bio:            stripHTML(acct.Note),
		Avatar:         acct.Avatar,
	}

	// Profile metadata values are HTML; keep the link target when the
	// value is an anchor, since that is the verifiable part.
	for _, f := range acct.Fields {
		value := f.Value
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.Value)); err == nil {
			if href, ok := doc.Find("a").First().Attr("href"); ok {
				value = href
			} else {
				value = strings.TrimSpace(doc.Text())
			}
		}
		out.Fields = append(out.Fields, model.MastodonField{Name: f.Name, Value: value})
	}
	return out
}

// fediverseSite is one instance probe pattern from the fediverse catalog.
type fediverseSite struct {
	Name     string `json:"name"`
	URICheck string `json:"uri_check"`
	EString  string `json:"e_string"`
}

// instanceSweep probes known fediverse instances for the username,
// stopping after mastodonSweepMaxMatches hits.
func (m *Mastodon) instanceSweep(ctx context.Context, username string) ([]model.MastodonMatch, *Error) {
	var catalog struct {
		Sites []fediverseSite `json:"sites"`
	}
	if perr := getJSON(ctx, m.client, m.catalogURL, nil, m.maxBodySize, &catalog); perr != nil {
		return nil, perr
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		matches []model.MastodonMatch
	)

	g, gctx := errgroup.WithContext(sweepCtx)
	g.SetLimit(mastodonSweepConcurrency)

	for _, site := range catalog.Sites {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			checkURL := strings.ReplaceAll(site.URICheck, "{account}", username)
			if !m.probeInstance(gctx, checkURL, site.EString) {
				return nil
			}

			mu.Lock()
			matches = append(matches, model.MastodonMatch{Name: site.Name, ProfileURL: checkURL})
			enough := len(matches) >= mastodonSweepMaxMatches
			mu.Unlock()

			if enough {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers only return nil

	if err := ctx.Err(); err != nil {
		return nil, AsError(err)
	}
	return matches, nil
}

// probeInstance reports whether the username page exists on one instance.
func (m *Mastodon) probeInstance(ctx context.Context, checkURL, marker string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, m.maxBodySize))
	if err != nil {
		return false
	}
	return marker == "" || strings.Contains(string(body), marker)
}

// mastodonInstance is the /api/v1/instance response shape.
type mastodonInstance struct {
	URI              string           `json:"uri"`
	Title            string           `json:"title"`
	ShortDescription string           `json:"short_description"`
	Description      string           `json:"description"`
	Email            string           `json:"email"`
	Thumbnail        string           `json:"thumbnail"`
	Languages        []string         `json:"languages"`
	Registrations    bool             `json:"registrations"`
	ApprovalRequired bool             `json:"approval_required"`
	ContactAccount   *mastodonAccount `json:"contact_account"`
}

// searchInstance fetches one instance's public metadata.
func (m *Mastodon) searchInstance(ctx context.Context, instance string, emit EmitFunc) error {
	m.logger.Debug("mastodon instance lookup", "instance", instance)

	var data mastodonInstance
	if perr := getJSON(ctx, m.client, m.instLookupFn(instance), nil, m.maxBodySize, &data); perr != nil {
		if perr.Kind == model.ErrorKindNotFound {
			perr = NewError(model.ErrorKindNotFound, "Mastodon instance %q not found", instance)
		}
		emit(model.Failure(m.Name(), perr.Kind, perr.Message))
		return perr
	}
	if data.URI == "" {
		perr := NewError(model.ErrorKindNotFound, "Mastodon instance %q not found", instance)
		emit(model.Failure(m.Name(), perr.Kind, perr.Message))
		return perr
	}

	info := model.MastodonInstance{
		Instance:            data.URI,
		Title:               data.Title,
		Description:         stripHTML(data.ShortDescription),
		DetailedDescription: stripHTML(data.Description),
		Email:               data.Email,
		Thumbnail:           data.Thumbnail,
		Languages:           data.Languages,
		Registrations:       data.Registrations,
		ApprovalRequired:    data.ApprovalRequired,
	}
	if data.ContactAccount != nil {
		admin := m.normalizeAccount(*data.ContactAccount)
		info.Admin = &admin
	}

	emit(model.Success(m.Name(), info))
	return nil
}

// stripHTML reduces an HTML fragment to its text content.
func stripHTML(fragment string) string {
	if fragment == "" || !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}
