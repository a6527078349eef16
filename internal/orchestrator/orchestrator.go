package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osintdeck/osintdeck/internal/model"
	"github.com/osintdeck/osintdeck/internal/provider"
)

// Recorder observes request lifecycles for persistence. Implementations
// must not block; the orchestrator calls them on the request's hot path.
type Recorder interface {
	// SearchStarted is called once per accepted request.
	SearchStarted(req model.SearchRequest)

	// SearchFinished is called once per terminated request with the
	// terminal status ("complete" or "cancelled"), the merged results,
	// and the per-unit failure count.
	SearchFinished(req model.SearchRequest, status string, results map[string]any, failures int)
}

// Orchestrator accepts search requests and streams their events.
//
// Design decision: Submit returns a receive-only event channel instead
// of taking a callback. The channel closes after the terminal event, so
// consumers get ordering, backpressure, and end-of-stream from one
// primitive, and the session layer stays a thin pump.
type Orchestrator struct {
	registry         *provider.Registry
	concurrency      int
	unitTimeout      time.Duration
	progressInterval time.Duration
	recorder         Recorder
	logger           *slog.Logger

	mu     sync.Mutex
	active map[string]*requestState
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder wires a lifecycle recorder (e.g. the history store).
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// New creates an Orchestrator over a provider registry. concurrency
// bounds simultaneous provider units per request, unitTimeout caps each
// unit, progressInterval coalesces progress events per module.
func New(registry *provider.Registry, concurrency int, unitTimeout, progressInterval time.Duration, logger *slog.Logger, opts ...Option) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	o := &Orchestrator{
		registry:         registry,
		concurrency:      concurrency,
		unitTimeout:      unitTimeout,
		progressInterval: progressInterval,
		logger:           logger,
		active:           make(map[string]*requestState),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit validates and launches a request, returning its event stream.
// The stream closes after exactly one terminal event (search_complete
// or the cancellation acknowledgment). Invalid input produces an error
// event plus the terminal event without touching any provider.
func (o *Orchestrator) Submit(ctx context.Context, req model.SearchRequest) (<-chan model.Event, error) {
	plan, err := BuildPlan(o.registry, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, req.Topic)
	}

	runCtx, cancel := context.WithCancel(ctx)
	st := newRequestState(req, len(plan.Units), cancel, o.progressInterval, o.logger)
	st.onFinish = o.finish

	o.mu.Lock()
	o.active[req.ID] = st
	o.mu.Unlock()

	if o.recorder != nil {
		o.recorder.SearchStarted(req)
	}
	o.logger.Info("search submitted",
		"request_id", req.ID, "topic", req.Topic.String(), "units", len(plan.Units))

	if perr := provider.ValidateInput(req); perr != nil {
		st.failRequest(perr.Message)
		return st.events, nil
	}

	go o.run(runCtx, plan, st)
	return st.events, nil
}

// Cancel terminates an active request. Cancelling an unknown or already
// terminated request returns ErrUnknownRequest; cancel-after-complete
// is therefore a visible no-op, not a fault.
func (o *Orchestrator) Cancel(requestID string) error {
	o.mu.Lock()
	st, ok := o.active[requestID]
	o.mu.Unlock()

	if !ok || !st.cancelRequest() {
		return ErrUnknownRequest
	}
	o.logger.Info("search cancelled", "request_id", requestID)
	return nil
}

// run fans the plan's units out on a bounded pool and drives the
// aggregator. It returns after every unit has accounted for itself.
func (o *Orchestrator) run(ctx context.Context, plan Plan, st *requestState) {
	g := &errgroup.Group{}
	g.SetLimit(o.concurrency)

	for _, unit := range plan.Units {
		g.Go(func() error {
			o.runUnit(ctx, unit, plan.Request, st)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Units account for failures via outcomes
}

// runUnit executes one provider under its timeout. Every exit path ends
// in a terminal outcome for the unit: a panic becomes an internal
// failure, a deadline becomes a timeout failure, and provider errors
// have already been emitted by the adapter itself.
func (o *Orchestrator) runUnit(ctx context.Context, p provider.Provider, req model.SearchRequest, st *requestState) {
	unitCtx := ctx
	var cancel context.CancelFunc
	if o.unitTimeout > 0 {
		unitCtx, cancel = context.WithTimeout(ctx, o.unitTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("provider panicked",
				"request_id", req.ID, "module", p.Name(), "panic", r, "stack", string(debug.Stack()))
			st.onOutcome(model.Failure(p.Name(), model.ErrorKindInternal, "internal error"))
		}
	}()

	start := time.Now()
	err := p.Search(unitCtx, req, st.onOutcome)
	if err != nil {
		o.logger.Warn("provider failed",
			"request_id", req.ID, "module", p.Name(), "error", err, "elapsed", time.Since(start))
		return
	}
	o.logger.Debug("provider finished",
		"request_id", req.ID, "module", p.Name(), "elapsed", time.Since(start))
}

// finish runs once per request, right after its terminal event.
func (o *Orchestrator) finish(st *requestState, cancelled bool) {
	o.mu.Lock()
	delete(o.active, st.req.ID)
	o.mu.Unlock()

	status := "complete"
	if cancelled {
		status = "cancelled"
	}
	if o.recorder != nil {
		o.recorder.SearchFinished(st.req, status, st.merged, st.failures)
	}
	o.logger.Info("search finished",
		"request_id", st.req.ID, "topic", st.req.Topic.String(), "status", status, "failures", st.failures)
}
