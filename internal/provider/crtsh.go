package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/osintdeck/osintdeck/internal/model"
)

// defaultCrtshBaseURL is the crt.sh certificate transparency search API.
const defaultCrtshBaseURL = "https://crt.sh"

// Crtsh enumerates subdomains from certificate transparency logs.
// Every certificate ever issued for a name under the domain shows up in
// the logs, which makes crt.sh a passive subdomain source: no probe
// traffic reaches the target.
type Crtsh struct {
	client      *http.Client
	baseURL     string
	maxBodySize int64
	logger      *slog.Logger
}

// NewCrtsh creates the certificate transparency adapter.
func NewCrtsh(client *http.Client, maxBodySize int64, logger *slog.Logger) *Crtsh {
	return &Crtsh{
		client:      client,
		baseURL:     defaultCrtshBaseURL,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (c *Crtsh) Name() string { return "crtsh" }

// Topic implements Provider.
func (c *Crtsh) Topic() model.Topic { return model.TopicDomain }

// crtshEntry is one row of the crt.sh JSON output. NameValue may hold
// several newline-separated names from one certificate.
type crtshEntry struct {
	NameValue string `json:"name_value"`
}

// Search implements Provider.
func (c *Crtsh) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	domain := req.Input
	c.logger.Debug("crtsh lookup", "domain", domain)

	lookupURL := c.baseURL + "/?q=" + url.QueryEscape(domain) + "&output=json"

	var entries []crtshEntry
	if perr := getJSON(ctx, c.client, lookupURL, nil, c.maxBodySize, &entries); perr != nil {
		emit(model.Failure(c.Name(), perr.Kind, perr.Message))
		return perr
	}

	seen := make(map[string]struct{})
	for _, entry := range entries {
		for _, name := range strings.Split(entry.NameValue, "\n") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			seen[name] = struct{}{}
		}
	}

	subdomains := make(model.Subdomains, 0, len(seen))
	for name := range seen {
		subdomains = append(subdomains, name)
	}
	sort.Strings(subdomains)

	emit(model.Success(c.Name(), subdomains))
	return nil
}
