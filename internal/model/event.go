package model

// EventName identifies a server-to-client event on a session channel.
type EventName string

const (
	// EventConnectionSuccess is sent once when a channel opens.
	EventConnectionSuccess EventName = "connection_success"

	// EventSearchResult carries one result, one error, or one of the
	// username-scan lifecycle payloads.
	EventSearchResult EventName = "search_result"

	// EventSearchProgress carries a coalesced progress update for
	// long-running scans.
	EventSearchProgress EventName = "search_progress"

	// EventSearchComplete is the terminal signal for a completed request.
	// It carries no payload.
	EventSearchComplete EventName = "search_complete"
)

// Event is the wire envelope streamed to clients over a session channel.
// Payload is always a parsed JSON object (never a double-encoded string);
// its concrete type depends on Name.
//
// Design decision: One envelope type with a typed payload per event keeps
// the wire contract in a single place. The original protocol this server
// speaks grew two divergent client-side interpretations; emitting only
// structured objects from one envelope type ends that ambiguity.
type Event struct {
	// Name is the event name delivered to the client.
	Name EventName `json:"event"`

	// Payload is the event body. Nil for search_complete.
	Payload any `json:"payload,omitempty"`
}

// ErrorResult is the search_result payload for a failed request or unit.
type ErrorResult struct {
	Error string `json:"error"`
}

// CancelledResult is the search_result payload acknowledging a
// client-initiated cancellation. It is the wire rendering of the
// request's terminal Cancelled event.
type CancelledResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ConnectionInfo is the connection_success payload.
type ConnectionInfo struct {
	Status string `json:"status"`
}

// ModuleResult is the search_result payload for one normalized success
// outcome. Exactly one of Results or Data is set, matching the key the
// module historically used on the wire.
type ModuleResult struct {
	Result ModuleData `json:"result"`
}

// ModuleData is the per-module body inside a ModuleResult.
type ModuleData struct {
	// Module names the provider that produced the payload.
	Module string `json:"module"`

	// Results carries the payload for modules that publish under the
	// "results" key (whois, crtsh, discord, mastodon).
	Results any `json:"results,omitempty"`

	// Data carries the payload for modules that publish under the
	// "data" key (github, google).
	Data any `json:"data,omitempty"`

	// SearchType echoes the request sub-mode where relevant (tiktok).
	SearchType string `json:"search_type,omitempty"`
}

// ProgressInfo is the search_progress payload.
type ProgressInfo struct {
	Module   string `json:"module"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// Username-scan payloads. The fan-out scan has its own lifecycle on the
// wire: a start marker with the catalog size, a site_found record per hit
// (with embedded progress), and a complete summary.

// ScanStart is the search_result payload announcing a fan-out scan.
type ScanStart struct {
	Module string        `json:"module"`
	Status string        `json:"status"` // always "start"
	Data   ScanStartData `json:"data"`
}

// ScanStartData carries the catalog size for a starting scan.
type ScanStartData struct {
	TotalSites int `json:"total_sites"`
}

// SiteFound is the search_result payload for one positive site hit.
type SiteFound struct {
	Module string        `json:"module"`
	Type   string        `json:"type"` // always "site_found"
	Data   SiteFoundData `json:"data"`
}

// SiteFoundData describes where a username was found.
type SiteFoundData struct {
	SiteName      string       `json:"site_name"`
	URICheck      string       `json:"uri_check"`
	URIPretty     string       `json:"uri_pretty,omitempty"`
	Category      string       `json:"category,omitempty"`
	ExtractedInfo string       `json:"extracted_info,omitempty"`
	Progress      ScanProgress `json:"progress"`
}

// ScanProgress is the completed-unit counter embedded in scan events.
type ScanProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ScanComplete is the search_result payload summarizing a finished scan.
type ScanComplete struct {
	Module string           `json:"module"`
	Type   string           `json:"type"` // always "complete"
	Data   ScanCompleteData `json:"data"`
}

// ScanCompleteData summarizes a finished fan-out scan.
type ScanCompleteData struct {
	TotalFound int       `json:"total_found"`
	TotalSites int       `json:"total_sites"`
	FoundSites []SiteHit `json:"found_sites"`
}

// SiteHit is one entry in a scan summary's found list.
type SiteHit struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

// NewResultEvent wraps a ModuleData in a search_result envelope.
func NewResultEvent(data ModuleData) Event {
	return Event{Name: EventSearchResult, Payload: ModuleResult{Result: data}}
}

// NewErrorEvent wraps an error message in a search_result envelope.
func NewErrorEvent(message string) Event {
	return Event{Name: EventSearchResult, Payload: ErrorResult{Error: message}}
}

// NewProgressEvent wraps a progress update in a search_progress envelope.
func NewProgressEvent(module, message string, progress int) Event {
	return Event{
		Name:    EventSearchProgress,
		Payload: ProgressInfo{Module: module, Message: message, Progress: progress},
	}
}

// NewCompleteEvent returns the terminal search_complete envelope.
func NewCompleteEvent() Event {
	return Event{Name: EventSearchComplete}
}

// NewCancelledEvent returns the terminal cancellation acknowledgment.
func NewCancelledEvent() Event {
	return Event{
		Name: EventSearchResult,
		Payload: CancelledResult{
			Status:  "cancelled",
			Message: "Search cancelled by user",
		},
	}
}

// NewConnectionEvent returns the channel-open greeting.
func NewConnectionEvent() Event {
	return Event{
		Name:    EventConnectionSuccess,
		Payload: ConnectionInfo{Status: "connected"},
	}
}
