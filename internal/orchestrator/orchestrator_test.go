package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osintdeck/osintdeck/internal/model"
	"github.com/osintdeck/osintdeck/internal/provider"
)

// scripted is a scriptable provider for orchestration tests.
type scripted struct {
	name   string
	topic  model.Topic
	search func(ctx context.Context, req model.SearchRequest, emit provider.EmitFunc) error
}

func (s *scripted) Name() string       { return s.name }
func (s *scripted) Topic() model.Topic { return s.topic }
func (s *scripted) Search(ctx context.Context, req model.SearchRequest, emit provider.EmitFunc) error {
	return s.search(ctx, req, emit)
}

// succeedWith returns a provider that emits one success payload.
func succeedWith(name string, topic model.Topic, payload any) *scripted {
	return &scripted{name: name, topic: topic, search: func(_ context.Context, _ model.SearchRequest, emit provider.EmitFunc) error {
		emit(model.Success(name, payload))
		return nil
	}}
}

func newOrchestrator(t *testing.T, concurrency int, providers ...provider.Provider) *Orchestrator {
	t.Helper()

	reg := provider.NewRegistry()
	for _, p := range providers {
		reg.Register(p)
	}
	return New(reg, concurrency, time.Minute, time.Millisecond, testLogger())
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	t.Run("streams results and exactly one terminal event", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, 4,
			succeedWith("whois", model.TopicDomain, model.WhoisRecord{Domain: "example.com"}),
			succeedWith("crtsh", model.TopicDomain, model.Subdomains{"www.example.com"}),
		)

		events, err := o.Submit(context.Background(), model.SearchRequest{
			ID: "r1", Topic: model.TopicDomain, Input: "example.com",
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}

		got := drain(t, events)
		var terminals int
		for i, ev := range got {
			if ev.Name == model.EventSearchComplete {
				terminals++
				if i != len(got)-1 {
					t.Errorf("terminal event at index %d of %d, want last", i, len(got))
				}
			}
		}
		if terminals != 1 {
			t.Errorf("terminal events = %d, want exactly 1", terminals)
		}
		if len(got) != 3 {
			t.Errorf("got %d events, want 2 results + complete: %+v", len(got), got)
		}
	})

	t.Run("unknown topic is rejected before launch", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, 4)
		_, err := o.Submit(context.Background(), model.SearchRequest{
			ID: "r2", Topic: model.TopicGoogle, Input: "a@example.com",
		})
		if !errors.Is(err, ErrUnknownTopic) {
			t.Fatalf("Submit() error = %v, want ErrUnknownTopic", err)
		}
	})

	t.Run("invalid input terminates with zero provider invocations", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		p := &scripted{name: "whois", topic: model.TopicDomain, search: func(_ context.Context, _ model.SearchRequest, emit provider.EmitFunc) error {
			calls.Add(1)
			emit(model.Success("whois", model.WhoisRecord{}))
			return nil
		}}
		o := newOrchestrator(t, 4, p)

		events, err := o.Submit(context.Background(), model.SearchRequest{
			ID: "r3", Topic: model.TopicDomain, Input: "not a domain",
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}

		got := drain(t, events)
		if len(got) != 2 {
			t.Fatalf("got %d events, want error + complete: %+v", len(got), got)
		}
		if _, ok := got[0].Payload.(model.ErrorResult); !ok {
			t.Errorf("first event = %+v, want error result", got[0])
		}
		if got[1].Name != model.EventSearchComplete {
			t.Errorf("second event = %q, want search_complete", got[1].Name)
		}
		if calls.Load() != 0 {
			t.Errorf("provider invoked %d times on invalid input, want 0", calls.Load())
		}
	})

	t.Run("panicking provider becomes an internal failure, not a hang", func(t *testing.T) {
		t.Parallel()

		p := &scripted{name: "whois", topic: model.TopicDomain, search: func(_ context.Context, _ model.SearchRequest, _ provider.EmitFunc) error {
			panic("boom")
		}}
		o := newOrchestrator(t, 4, p)

		events, err := o.Submit(context.Background(), model.SearchRequest{
			ID: "r4", Topic: model.TopicDomain, Input: "example.com",
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}

		got := drain(t, events)
		errResult, ok := got[0].Payload.(model.ErrorResult)
		if !ok || errResult.Error != "internal error" {
			t.Errorf("first event = %+v, want generic internal error", got[0])
		}
		if got[len(got)-1].Name != model.EventSearchComplete {
			t.Error("panicked request must still terminate")
		}
	})

	t.Run("per-unit timeout surfaces as a failure while others succeed", func(t *testing.T) {
		t.Parallel()

		slow := &scripted{name: "whois", topic: model.TopicDomain, search: func(ctx context.Context, _ model.SearchRequest, emit provider.EmitFunc) error {
			<-ctx.Done()
			perr := provider.AsError(ctx.Err())
			emit(model.Failure("whois", perr.Kind, perr.Message))
			return perr
		}}
		fast := succeedWith("crtsh", model.TopicDomain, model.Subdomains{})

		reg := provider.NewRegistry()
		reg.Register(slow)
		reg.Register(fast)
		o := New(reg, 4, 20*time.Millisecond, time.Millisecond, testLogger())

		events, err := o.Submit(context.Background(), model.SearchRequest{
			ID: "r5", Topic: model.TopicDomain, Input: "example.com",
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}

		got := drain(t, events)
		var sawError, sawResult bool
		for _, ev := range got {
			switch ev.Payload.(type) {
			case model.ErrorResult:
				sawError = true
			case model.ModuleResult:
				sawResult = true
			}
		}
		if !sawError || !sawResult {
			t.Errorf("events = %+v, want one timeout error and one result", got)
		}
	})
}

func TestCancel(t *testing.T) {
	t.Parallel()

	t.Run("cancel stops the stream with the acknowledgment", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		p := &scripted{name: "whois", topic: model.TopicDomain, search: func(ctx context.Context, _ model.SearchRequest, emit provider.EmitFunc) error {
			close(started)
			<-ctx.Done()
			// This outcome arrives after the terminal ack and must be dropped.
			emit(model.Failure("whois", model.ErrorKindInternal, "request cancelled"))
			return ctx.Err()
		}}
		o := newOrchestrator(t, 4, p)

		events, err := o.Submit(context.Background(), model.SearchRequest{
			ID: "r6", Topic: model.TopicDomain, Input: "example.com",
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}

		<-started
		if err := o.Cancel("r6"); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}

		got := drain(t, events)
		if len(got) != 1 {
			t.Fatalf("got %d events, want only the ack: %+v", len(got), got)
		}
		ack, ok := got[0].Payload.(model.CancelledResult)
		if !ok || ack.Message != "Search cancelled by user" {
			t.Errorf("ack = %+v", got[0])
		}
	})

	t.Run("cancel after completion is a visible no-op", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, 4, succeedWith("whois", model.TopicDomain, model.WhoisRecord{}))

		events, err := o.Submit(context.Background(), model.SearchRequest{
			ID: "r7", Topic: model.TopicDomain, Input: "example.com",
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		drain(t, events)

		if err := o.Cancel("r7"); !errors.Is(err, ErrUnknownRequest) {
			t.Errorf("Cancel() after complete = %v, want ErrUnknownRequest", err)
		}
	})

	t.Run("cancel of a never-submitted request", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, 4)
		if err := o.Cancel("nope"); !errors.Is(err, ErrUnknownRequest) {
			t.Errorf("Cancel() = %v, want ErrUnknownRequest", err)
		}
	})
}

// TestBoundedConcurrency launches many units through a small pool and
// checks the in-flight count never exceeds the limit.
func TestBoundedConcurrency(t *testing.T) {
	t.Parallel()

	const limit = 20
	const units = 200

	var inFlight, peak atomic.Int32
	reg := provider.NewRegistry()
	for i := 0; i < units; i++ {
		name := fmt.Sprintf("unit-%03d", i)
		reg.Register(&scripted{name: name, topic: model.TopicDomain, search: func(_ context.Context, _ model.SearchRequest, emit provider.EmitFunc) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			emit(model.Success(name, model.WhoisRecord{}))
			return nil
		}})
	}
	o := New(reg, limit, time.Minute, time.Millisecond, testLogger())

	events, err := o.Submit(context.Background(), model.SearchRequest{
		ID: "r8", Topic: model.TopicDomain, Input: "example.com",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var got []model.Event
	go func() {
		defer wg.Done()
		got = drain(t, events)
	}()
	wg.Wait()

	if p := peak.Load(); p > limit {
		t.Errorf("peak concurrency = %d, exceeds limit %d", p, limit)
	}
	if got[len(got)-1].Name != model.EventSearchComplete {
		t.Error("last event must be search_complete")
	}
	if len(got) != units+1 {
		t.Errorf("got %d events, want %d results + complete", len(got), units)
	}
}

// recordingRecorder captures lifecycle calls for assertions.
type recordingRecorder struct {
	mu       sync.Mutex
	started  []string
	finished map[string]string
}

func (r *recordingRecorder) SearchStarted(req model.SearchRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, req.ID)
}

func (r *recordingRecorder) SearchFinished(req model.SearchRequest, status string, _ map[string]any, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished == nil {
		r.finished = make(map[string]string)
	}
	r.finished[req.ID] = status
}

func TestRecorderLifecycle(t *testing.T) {
	t.Parallel()

	rec := &recordingRecorder{}
	reg := provider.NewRegistry()
	reg.Register(succeedWith("whois", model.TopicDomain, model.WhoisRecord{}))
	o := New(reg, 4, time.Minute, time.Millisecond, testLogger(), WithRecorder(rec))

	events, err := o.Submit(context.Background(), model.SearchRequest{
		ID: "r9", Topic: model.TopicDomain, Input: "example.com",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	drain(t, events)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.started) != 1 || rec.started[0] != "r9" {
		t.Errorf("started = %v", rec.started)
	}
	if rec.finished["r9"] != "complete" {
		t.Errorf("finished status = %q, want complete", rec.finished["r9"])
	}
}
