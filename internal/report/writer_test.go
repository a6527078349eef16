package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/osintdeck/osintdeck/internal/model"
)

func sampleReport() *Report {
	return &Report{
		Topic:     "github",
		Input:     "octocat",
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1200 * time.Millisecond,
		Status:    "complete",
		Modules: map[string]any{
			"github": map[string]any{"login": "octocat", "public_repos": 8},
		},
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("folds module results and errors", func(t *testing.T) {
		t.Parallel()

		req := model.NewSearchRequest(model.TopicDomain, "example.com", "")
		events := make(chan model.Event, 4)
		events <- model.NewResultEvent(model.ModuleData{
			Module:  "whois",
			Results: map[string]any{"domain": "example.com"},
		})
		events <- model.NewResultEvent(model.ModuleData{
			Module: "github",
			Data:   map[string]any{"login": "octocat"},
		})
		events <- model.NewErrorEvent("crtsh: upstream unavailable")
		events <- model.NewCompleteEvent()
		close(events)

		r := Collect(req, events)
		if r.Status != "complete" {
			t.Errorf("Status = %q, want complete", r.Status)
		}
		if len(r.Modules) != 2 {
			t.Fatalf("Modules = %v, want 2 entries", r.Modules)
		}
		if got := r.ModuleNames(); got[0] != "github" || got[1] != "whois" {
			t.Errorf("ModuleNames() = %v, want sorted", got)
		}
		if len(r.Errors) != 1 || !strings.Contains(r.Errors[0], "crtsh") {
			t.Errorf("Errors = %v", r.Errors)
		}
	})

	t.Run("records cancellation", func(t *testing.T) {
		t.Parallel()

		req := model.NewSearchRequest(model.TopicGitHub, "octocat", "")
		events := make(chan model.Event, 1)
		events <- model.NewCancelledEvent()
		close(events)

		if r := Collect(req, events); r.Status != "cancelled" {
			t.Errorf("Status = %q, want cancelled", r.Status)
		}
	})

	t.Run("keeps scan hits and summary", func(t *testing.T) {
		t.Parallel()

		req := model.NewSearchRequest(model.TopicUsername, "jdoe", "")
		events := make(chan model.Event, 3)
		events <- model.Event{Name: model.EventSearchResult, Payload: model.SiteFound{
			Module: "whatsmyname",
			Type:   "site_found",
			Data:   model.SiteFoundData{SiteName: "ExampleHub", URIPretty: "https://examplehub.test/jdoe"},
		}}
		events <- model.Event{Name: model.EventSearchResult, Payload: model.ScanComplete{
			Module: "whatsmyname",
			Type:   "complete",
			Data:   model.ScanCompleteData{TotalFound: 1, TotalSites: 45},
		}}
		events <- model.NewCompleteEvent()
		close(events)

		r := Collect(req, events)
		if len(r.Sites) != 1 || r.Sites[0].SiteName != "ExampleHub" {
			t.Errorf("Sites = %+v", r.Sites)
		}
		if _, ok := r.Modules["whatsmyname"]; !ok {
			t.Error("scan summary not kept as module payload")
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	n, err := w.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() n = %d, buffer has %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{"OSINTDECK LOOKUP", "octocat", "GITHUB", "Status:     Complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ERRORS") {
		t.Error("error section shown with no errors and showEmpty off")
	}
}

func TestSimpleWriterShowEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithShowEmpty(true))

	r := sampleReport()
	r.Modules = nil
	if _, err := w.Write(r); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "No results") {
		t.Errorf("empty results section missing:\n%s", out)
	}
	if !strings.Contains(out, "No errors") {
		t.Errorf("empty errors section missing:\n%s", out)
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var decoded Report
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Input != "octocat" || decoded.Status != "complete" {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"topic\"") {
			t.Errorf("output not indented:\n%s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := sampleReport()
	r.Errors = []string{"reddit: rate limited"}

	if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# Lookup Report", "### Github", "```json", "## Errors", "rate limited"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// errWriter fails after a fixed number of writes.
type errWriter struct {
	allowed int
}

func (w *errWriter) Write(p []byte) (int, error) {
	if w.allowed <= 0 {
		return 0, errors.New("write failed")
	}
	w.allowed--
	return len(p), nil
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
		if _, err := mw.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("one of the writers received no output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(&errWriter{}), NewJSONWriter(&after))
		if _, err := mw.Write(sampleReport()); err == nil {
			t.Fatal("Write() error = nil, want failure")
		}
		if after.Len() != 0 {
			t.Error("writer after the failing one still ran")
		}
	})
}
