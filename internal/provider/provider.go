package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/osintdeck/osintdeck/internal/model"
)

// EmitFunc receives outcomes from a running provider unit.
// Implementations must be safe for concurrent use; the username fan-out
// calls it from many goroutines.
type EmitFunc func(model.Outcome)

// Provider is one upstream source adapter.
//
// Search runs one lookup for the request and reports everything through
// emit: zero or more Progress or partial Success outcomes followed by
// exactly one terminal outcome. The returned error duplicates the
// terminal Failure for callers that want Go error flow; a nil return
// means the terminal outcome was a Success.
//
// Search must honor ctx cancellation promptly and must not panic.
type Provider interface {
	// Name is the module name used on the wire (e.g. "whois").
	Name() string

	// Topic is the identifier class this provider serves.
	Topic() model.Topic

	// Search performs the lookup for req and emits outcomes.
	Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error
}

// Error is the failure type returned by all adapters. The Kind
// classifies the failure for aggregation; the Message is safe to show
// to clients.
type Error struct {
	Kind    model.ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a classified provider error.
func NewError(kind model.ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a *Error from err, wrapping unclassified errors as
// upstream failures. Context cancellation and deadline expiry map to
// their own kinds so the aggregator can report them distinctly.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(model.ErrorKindTimeout, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return NewError(model.ErrorKindInternal, "request cancelled")
	}
	return NewError(model.ErrorKindUpstream, "%v", err)
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(status int) model.ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return model.ErrorKindNotFound
	case status == http.StatusTooManyRequests:
		return model.ErrorKindRateLimited
	default:
		return model.ErrorKindUpstream
	}
}

// getJSON fetches url and decodes the response body into v.
// Non-200 statuses become classified errors; bodies are capped at
// maxBody bytes to bound memory per unit.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, maxBody int64, v any) *Error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewError(model.ErrorKindInternal, "building request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return AsError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewError(classifyStatus(resp.StatusCode), "unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return AsError(err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return NewError(model.ErrorKindUpstream, "invalid JSON from %s: %v", req.URL.Host, err)
	}
	return nil
}
