package model

import "testing"

// TestOutcomeTerminal verifies which outcome shapes end a unit's
// emission stream.
func TestOutcomeTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome Outcome
		want    bool
	}{
		{
			name:    "success is terminal",
			outcome: Success("whois", WhoisRecord{Domain: "example.com"}),
			want:    true,
		},
		{
			name:    "partial success is not terminal",
			outcome: PartialSuccess("reddit", RedditProfile{Username: "spez"}),
			want:    false,
		},
		{
			name:    "failure is terminal",
			outcome: Failure("crtsh", ErrorKindUpstream, "bad gateway"),
			want:    true,
		},
		{
			name:    "progress is not terminal",
			outcome: Progress("username_scan", 10, 500, "scanning"),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.outcome.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestOutcomeConstructors verifies that constructors set the fields the
// aggregator reads.
func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	t.Run("Failure carries kind and message", func(t *testing.T) {
		t.Parallel()
		o := Failure("discord", ErrorKindNotFound, "user not found")
		if o.Kind != OutcomeFailure {
			t.Errorf("Kind = %v, want OutcomeFailure", o.Kind)
		}
		if o.Module != "discord" {
			t.Errorf("Module = %q, want %q", o.Module, "discord")
		}
		if o.ErrorKind != ErrorKindNotFound {
			t.Errorf("ErrorKind = %v, want ErrorKindNotFound", o.ErrorKind)
		}
		if o.Message != "user not found" {
			t.Errorf("Message = %q, want %q", o.Message, "user not found")
		}
	})

	t.Run("Progress carries counters", func(t *testing.T) {
		t.Parallel()
		o := Progress("username_scan", 42, 500, "scanning sites")
		if o.Kind != OutcomeProgress {
			t.Errorf("Kind = %v, want OutcomeProgress", o.Kind)
		}
		if o.Current != 42 || o.Total != 500 {
			t.Errorf("Current/Total = %d/%d, want 42/500", o.Current, o.Total)
		}
	})

	t.Run("Success has zero error kind", func(t *testing.T) {
		t.Parallel()
		o := Success("github", GitHubProfile{Login: "torvalds"})
		if o.ErrorKind != ErrorKindNone {
			t.Errorf("ErrorKind = %v, want ErrorKindNone", o.ErrorKind)
		}
	})
}

// TestErrorKindString verifies the wire strings for the failure taxonomy.
func TestErrorKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ErrorKind
		want string
	}{
		{kind: ErrorKindNone, want: "none"},
		{kind: ErrorKindInvalidInput, want: "invalid_input"},
		{kind: ErrorKindNotFound, want: "not_found"},
		{kind: ErrorKindRateLimited, want: "rate_limited"},
		{kind: ErrorKindUpstream, want: "upstream_error"},
		{kind: ErrorKindTimeout, want: "timeout"},
		{kind: ErrorKindInternal, want: "internal_error"},
		{kind: ErrorKind(99), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
