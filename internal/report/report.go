package report

import (
	"sort"
	"time"

	"github.com/osintdeck/osintdeck/internal/model"
)

// Report is the collected result of one lookup: everything the event
// stream delivered for a single request, folded into one value.
type Report struct {
	// Topic is the identifier class that was searched.
	Topic string `json:"topic"`

	// Input is the identifier that was looked up.
	Input string `json:"input"`

	// SearchType is the sub-mode, when the topic has one.
	SearchType string `json:"search_type,omitempty"`

	// StartedAt is when the request was submitted.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time from submission to the terminal event.
	Duration time.Duration `json:"duration"`

	// Status is "complete" or "cancelled".
	Status string `json:"status"`

	// Modules maps module name to its normalized payload.
	Modules map[string]any `json:"modules"`

	// Sites holds positive hits from a username fan-out scan.
	Sites []model.SiteFoundData `json:"sites,omitempty"`

	// Errors collects per-module failure messages.
	Errors []string `json:"errors,omitempty"`
}

// ModuleNames returns the module names in sorted order for stable output.
func (r *Report) ModuleNames() []string {
	names := make([]string, 0, len(r.Modules))
	for name := range r.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasResults reports whether any module produced a payload or any scan
// site was found.
func (r *Report) HasResults() bool {
	return len(r.Modules) > 0 || len(r.Sites) > 0
}

// Collect drains a finished request's event stream into a Report. It
// returns when the stream closes, which the orchestrator guarantees
// happens after exactly one terminal event.
func Collect(req model.SearchRequest, events <-chan model.Event) *Report {
	r := &Report{
		Topic:      req.Topic.String(),
		Input:      req.Input,
		SearchType: req.SearchType,
		StartedAt:  req.SubmittedAt,
		Status:     "complete",
		Modules:    make(map[string]any),
	}

	for ev := range events {
		switch payload := ev.Payload.(type) {
		case model.ModuleResult:
			data := payload.Result
			if data.Results != nil {
				r.Modules[data.Module] = data.Results
			} else {
				r.Modules[data.Module] = data.Data
			}
		case model.ErrorResult:
			r.Errors = append(r.Errors, payload.Error)
		case model.CancelledResult:
			r.Status = "cancelled"
		case model.SiteFound:
			r.Sites = append(r.Sites, payload.Data)
		case model.ScanComplete:
			r.Modules[payload.Module] = payload.Data
		}
	}

	r.Duration = time.Since(req.SubmittedAt).Round(time.Millisecond)
	return r
}
