package model

// OutcomeKind distinguishes the three emissions a provider unit can make.
type OutcomeKind int

const (
	// OutcomeSuccess carries a normalized payload for a module.
	// Terminal for the emitting unit unless the provider is multi-part,
	// in which case only the provider's final emission is terminal.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeFailure carries a typed error for a module. Terminal.
	OutcomeFailure

	// OutcomeProgress carries a current/total progress update.
	// Repeatable; never terminal.
	OutcomeProgress
)

// String returns a human-readable representation of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// ErrorKind is the failure taxonomy shared by all provider adapters.
//
// Design decision: We use iota-based constants with a String() method
// rather than error values because an ErrorKind classifies a failure for
// clients and aggregation logic; the underlying error (with its chain)
// travels separately through normal Go error returns.
type ErrorKind int

const (
	// ErrorKindNone means no error. Zero value for success outcomes.
	ErrorKindNone ErrorKind = iota

	// ErrorKindInvalidInput means the input failed topic validation.
	// Requests fail with this kind before any provider dispatch.
	ErrorKindInvalidInput

	// ErrorKindNotFound means the provider was reached but the target
	// does not exist there. This is not a system error.
	ErrorKindNotFound

	// ErrorKindRateLimited means the upstream refused the request due
	// to rate limiting (HTTP 429 or equivalent).
	ErrorKindRateLimited

	// ErrorKindUpstream means the upstream returned a server error or
	// a response the adapter could not parse.
	ErrorKindUpstream

	// ErrorKindTimeout means the adapter exceeded its per-unit budget.
	ErrorKindTimeout

	// ErrorKindInternal means a bug or unexpected condition inside
	// orchestration. Logged in full, surfaced generically to clients.
	ErrorKindInternal
)

// String returns a human-readable representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindInvalidInput:
		return "invalid_input"
	case ErrorKindNotFound:
		return "not_found"
	case ErrorKindRateLimited:
		return "rate_limited"
	case ErrorKindUpstream:
		return "upstream_error"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Outcome is the normalized emission of one provider unit: a tagged union
// over success, failure, and progress. A unit emits zero or more Progress
// outcomes followed by exactly one Success or Failure.
type Outcome struct {
	// Kind selects which of the variant fields below are meaningful.
	Kind OutcomeKind

	// Module names the provider that produced this outcome
	// (e.g. "whois", "crtsh", "reddit").
	Module string

	// Payload is the normalized result data for Success outcomes.
	// It is always one of the typed payload structs in this package.
	Payload any

	// Partial marks a Success outcome as a non-terminal part of a
	// multi-part module (e.g. the Reddit profile arriving before the
	// submissions). The aggregator shallow-merges partials; only the
	// final emission counts toward unit arrival.
	Partial bool

	// ErrorKind classifies Failure outcomes.
	ErrorKind ErrorKind

	// Message is the human-readable failure or progress message.
	Message string

	// Current and Total carry progress for Progress outcomes.
	Current int
	Total   int
}

// Success creates a terminal success outcome for a module.
func Success(module string, payload any) Outcome {
	return Outcome{Kind: OutcomeSuccess, Module: module, Payload: payload}
}

// PartialSuccess creates a non-terminal success outcome for a multi-part
// module. The aggregator merges it into the module's accumulated payload.
func PartialSuccess(module string, payload any) Outcome {
	return Outcome{Kind: OutcomeSuccess, Module: module, Payload: payload, Partial: true}
}

// Failure creates a terminal failure outcome for a module.
func Failure(module string, kind ErrorKind, message string) Outcome {
	return Outcome{Kind: OutcomeFailure, Module: module, ErrorKind: kind, Message: message}
}

// Progress creates a repeatable progress outcome for a module.
func Progress(module string, current, total int, message string) Outcome {
	return Outcome{
		Kind:    OutcomeProgress,
		Module:  module,
		Message: message,
		Current: current,
		Total:   total,
	}
}

// Terminal reports whether this outcome ends its unit's emission stream.
func (o Outcome) Terminal() bool {
	switch o.Kind {
	case OutcomeSuccess:
		return !o.Partial
	case OutcomeFailure:
		return true
	default:
		return false
	}
}
