package provider

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/osintdeck/osintdeck/internal/model"
)

// testLogger returns a logger that discards output, for adapter tests
// that care about emissions rather than log lines.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder captures provider emissions for assertions. Safe for
// concurrent emit calls.
type recorder struct {
	mu       sync.Mutex
	outcomes []model.Outcome
}

func (r *recorder) emit(o model.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recorder) all() []model.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Outcome(nil), r.outcomes...)
}

// terminal returns the single terminal outcome, failing the test if the
// provider emitted zero or more than one.
func (r *recorder) terminal(t *testing.T) model.Outcome {
	t.Helper()

	var term []model.Outcome
	for _, o := range r.all() {
		if o.Terminal() {
			term = append(term, o)
		}
	}
	if len(term) != 1 {
		t.Fatalf("expected exactly one terminal outcome, got %d (outcomes: %+v)", len(term), r.all())
	}
	return term[0]
}

// request builds a SearchRequest for a topic without going through the
// wire layer.
func request(topic model.Topic, input, searchType string) model.SearchRequest {
	return model.SearchRequest{
		ID:         "test-request",
		Topic:      topic,
		Input:      input,
		SearchType: searchType,
	}
}
