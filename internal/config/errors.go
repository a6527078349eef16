package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoServerAddr is returned when the listen address is empty.
	ErrNoServerAddr = errors.New("no server address: set serverAddr or --addr")

	// ErrInvalidTimeout is returned when the per-unit timeout is not positive.
	// A timeout of zero or negative would fail every provider request.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the worker-pool size is not
	// positive. Zero workers would stall the username fan-out scan.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidProgressInterval is returned when the progress coalescing
	// interval is negative. Use 0 to emit every progress update.
	ErrInvalidProgressInterval = errors.New("invalid progress interval: must be non-negative")

	// ErrNoCatalogURL is returned when the site catalog URL is empty and
	// no cached copy can be expected.
	ErrNoCatalogURL = errors.New("no catalog URL: set catalogURL")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
