package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/osintdeck/osintdeck/internal/model"
)

// eventBufferSize is the per-request event channel capacity. Sessions
// drain promptly; the buffer absorbs bursts from concurrent units.
const eventBufferSize = 256

// dataKeyModules publish their payload under the wire key "data";
// everything else publishes under "results".
var dataKeyModules = map[string]bool{
	"github": true,
	"google": true,
	"image":  true,
}

// requestState is the aggregator for one request. All fields behind mu;
// onOutcome is the single entry point for unit emissions, and terminal
// is flipped exactly once, after which everything is dropped.
type requestState struct {
	req    model.SearchRequest
	events chan model.Event
	cancel context.CancelFunc
	logger *slog.Logger

	progressInterval time.Duration

	mu           sync.Mutex
	terminal     bool
	expected     int
	arrived      int
	failures     int
	merged       map[string]any
	lastProgress map[string]time.Time
	onFinish     func(st *requestState, cancelled bool)
}

func newRequestState(req model.SearchRequest, expected int, cancel context.CancelFunc, progressInterval time.Duration, logger *slog.Logger) *requestState {
	return &requestState{
		req:              req,
		events:           make(chan model.Event, eventBufferSize),
		cancel:           cancel,
		logger:           logger,
		progressInterval: progressInterval,
		expected:         expected,
		merged:           make(map[string]any),
		lastProgress:     make(map[string]time.Time),
	}
}

// onOutcome folds one unit emission into the request. Partial successes
// merge; terminal outcomes count toward arrival; the completion check
// after the last arrival is the only place search_complete is produced.
func (st *requestState) onOutcome(o model.Outcome) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.terminal {
		// Post-terminal emissions come from units that outlived a
		// cancellation. Dropping them upholds the single-terminal rule.
		st.logger.Debug("dropping post-terminal outcome", "request_id", st.req.ID, "module", o.Module)
		return
	}

	switch o.Kind {
	case model.OutcomeProgress:
		st.onProgress(o)
	case model.OutcomeSuccess:
		st.mergePayload(o.Module, o.Payload)
		st.sendLocked(successEvent(st.req, o))
		if o.Terminal() {
			st.arrive()
		}
	case model.OutcomeFailure:
		st.failures++
		st.sendLocked(model.NewErrorEvent(o.Message))
		st.arrive()
	}
}

// onProgress forwards a progress update unless one for the same module
// went out within the coalescing interval. A finished counter always
// passes so clients can render the bar at 100%.
func (st *requestState) onProgress(o model.Outcome) {
	now := time.Now()
	finished := o.Total > 0 && o.Current >= o.Total
	if last, ok := st.lastProgress[o.Module]; ok && !finished && now.Sub(last) < st.progressInterval {
		return
	}
	st.lastProgress[o.Module] = now

	percent := 0
	if o.Total > 0 {
		percent = o.Current * 100 / o.Total
	}
	st.sendLocked(model.NewProgressEvent(o.Module, o.Message, percent))
}

// arrive counts a unit's terminal outcome and completes the request when
// the last one lands.
func (st *requestState) arrive() {
	st.arrived++
	if st.arrived < st.expected {
		return
	}
	st.sendTerminalLocked(model.NewCompleteEvent())
	st.finishLocked(false)
}

// cancelRequest terminates the request on client demand. Safe to call
// at any time; after the terminal event it is a no-op.
func (st *requestState) cancelRequest() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.terminal {
		return false
	}
	st.sendTerminalLocked(model.NewCancelledEvent())
	st.finishLocked(true)
	return true
}

// failRequest terminates the request with a single error, used for
// faults that predate or escape unit accounting.
func (st *requestState) failRequest(message string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.terminal {
		return
	}
	st.failures++
	st.sendLocked(model.NewErrorEvent(message))
	st.sendTerminalLocked(model.NewCompleteEvent())
	st.finishLocked(false)
}

// finishLocked flips the terminal flag, stops outstanding work, and
// closes the event stream. Callers must hold mu and have already sent
// the terminal event.
func (st *requestState) finishLocked(cancelled bool) {
	st.terminal = true
	st.cancel()
	close(st.events)
	if st.onFinish != nil {
		st.onFinish(st, cancelled)
	}
}

// sendLocked delivers a non-terminal event without risking a stall: a
// consumer that stopped draining loses events rather than wedging the
// pool. The last buffer slot is held back for the terminal event so a
// lossy stream still ends with exactly one search_complete or
// cancelled.
func (st *requestState) sendLocked(ev model.Event) {
	if len(st.events) >= cap(st.events)-1 {
		st.logger.Warn("event buffer full, dropping event", "request_id", st.req.ID, "event", ev.Name)
		return
	}
	st.events <- ev
}

// sendTerminalLocked delivers the request's single terminal event.
// sendLocked never fills the reserved slot and finishLocked runs right
// after, so this send cannot block.
func (st *requestState) sendTerminalLocked(ev model.Event) {
	st.events <- ev
}

// mergePayload shallow-merges a module's payload into its accumulated
// result. Object payloads merge key-by-key with new values winning;
// non-object payloads replace the accumulated value.
func (st *requestState) mergePayload(module string, payload any) {
	incoming, ok := toMap(payload)
	if !ok {
		st.merged[module] = payload
		return
	}

	existing, ok := st.merged[module].(map[string]any)
	if !ok {
		st.merged[module] = incoming
		return
	}
	for k, v := range incoming {
		existing[k] = v
	}
}

// toMap converts a typed payload to a key map via its JSON form.
func toMap(payload any) (map[string]any, bool) {
	if m, ok := payload.(map[string]any); ok {
		return m, true
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// successEvent renders a success outcome on the wire. Scan lifecycle
// payloads go out as-is; everything else is wrapped in the module
// result envelope under the module's historical key.
func successEvent(req model.SearchRequest, o model.Outcome) model.Event {
	switch o.Payload.(type) {
	case model.ScanStart, model.SiteFound, model.ScanComplete:
		return model.Event{Name: model.EventSearchResult, Payload: o.Payload}
	}

	data := model.ModuleData{Module: o.Module}
	if dataKeyModules[o.Module] {
		data.Data = o.Payload
	} else {
		data.Results = o.Payload
	}
	if o.Module == "tiktok" {
		data.SearchType = req.SearchType
	}
	return model.NewResultEvent(data)
}
