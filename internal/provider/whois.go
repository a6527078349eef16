package provider

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/osintdeck/osintdeck/internal/model"
)

// defaultRDAPBaseURL is the RDAP bootstrap redirector, which forwards a
// domain query to the authoritative registry.
const defaultRDAPBaseURL = "https://rdap.org"

// Whois looks up domain registration data over RDAP.
//
// Design decision: RDAP instead of port-43 WHOIS. RDAP is the registries'
// replacement protocol, answers JSON over HTTPS (so it rides the shared
// egress client, proxy included), and needs no per-TLD server table.
type Whois struct {
	client      *http.Client
	baseURL     string
	maxBodySize int64
	logger      *slog.Logger
}

// NewWhois creates the RDAP adapter.
func NewWhois(client *http.Client, maxBodySize int64, logger *slog.Logger) *Whois {
	return &Whois{
		client:      client,
		baseURL:     defaultRDAPBaseURL,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (w *Whois) Name() string { return "whois" }

// Topic implements Provider.
func (w *Whois) Topic() model.Topic { return model.TopicDomain }

// rdapResponse is the subset of an RDAP domain object we consume.
type rdapResponse struct {
	LDHName     string   `json:"ldhName"`
	Handle      string   `json:"handle"`
	Status      []string `json:"status"`
	Nameservers []struct {
		LDHName string `json:"ldhName"`
	} `json:"nameservers"`
	Events []struct {
		EventAction string `json:"eventAction"`
		EventDate   string `json:"eventDate"`
	} `json:"events"`
	Entities []struct {
		Roles      []string `json:"roles"`
		VCardArray []any    `json:"vcardArray"`
	} `json:"entities"`
	SecureDNS struct {
		DelegationSigned bool `json:"delegationSigned"`
	} `json:"secureDNS"`
}

// Search implements Provider.
func (w *Whois) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	domain := req.Input
	w.logger.Debug("whois lookup", "domain", domain)

	var rdap rdapResponse
	if perr := getJSON(ctx, w.client, w.baseURL+"/domain/"+domain, nil, w.maxBodySize, &rdap); perr != nil {
		emit(model.Failure(w.Name(), perr.Kind, perr.Message))
		return perr
	}

	record := model.WhoisRecord{
		Domain:   domain,
		Handle:   rdap.Handle,
		Statuses: rdap.Status,
		DNSSEC:   rdap.SecureDNS.DelegationSigned,
	}
	if rdap.LDHName != "" {
		record.Domain = rdap.LDHName
	}

	for _, ns := range rdap.Nameservers {
		if ns.LDHName != "" {
			record.Nameservers = append(record.Nameservers, ns.LDHName)
		}
	}

	for _, ev := range rdap.Events {
		switch ev.EventAction {
		case "registration":
			record.Created = ev.EventDate
		case "last changed":
			record.Updated = ev.EventDate
		case "expiration":
			record.Expires = ev.EventDate
		}
	}

	for _, ent := range rdap.Entities {
		for _, role := range ent.Roles {
			if role == "registrar" {
				record.Registrar = vcardFullName(ent.VCardArray)
			}
		}
	}

	emit(model.Success(w.Name(), record))
	return nil
}

// vcardFullName digs the "fn" property out of a jCard structure.
// jCard is ["vcard", [["fn", {}, "text", "Registrar Inc."], ...]].
func vcardFullName(vcard []any) string {
	if len(vcard) < 2 {
		return ""
	}
	props, ok := vcard[1].([]any)
	if !ok {
		return ""
	}
	for _, p := range props {
		prop, ok := p.([]any)
		if !ok || len(prop) < 4 {
			continue
		}
		if name, ok := prop[0].(string); !ok || name != "fn" {
			continue
		}
		if value, ok := prop[3].(string); ok {
			return value
		}
	}
	return ""
}
