package orchestrator

import "errors"

var (
	// ErrUnknownTopic is returned when a request names a topic no
	// provider serves.
	ErrUnknownTopic = errors.New("no providers registered for topic")

	// ErrUnknownRequest is returned when a cancel names a request that
	// is not active.
	ErrUnknownRequest = errors.New("unknown request")
)
