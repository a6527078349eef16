package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// SearchRequest is one client-submitted search. It is immutable once
// created: the orchestrator derives an execution plan from it but never
// mutates it.
type SearchRequest struct {
	// ID uniquely identifies this request for the lifetime of the process.
	// All events emitted for the request carry this ID internally so that
	// late outcomes from superseded requests can be recognized and dropped.
	ID string `json:"id"`

	// Topic is the identifier class being searched.
	Topic Topic `json:"topic"`

	// Input is the raw client-provided identifier (domain, username,
	// snowflake ID, URL). Validation happens per topic before dispatch.
	Input string `json:"input"`

	// SearchType selects a sub-mode on topics that serve more than one
	// (tiktok: "video"|"profile", mastodon: "username"|"instance").
	// Empty means the topic's default mode.
	SearchType string `json:"search_type,omitempty"`

	// SubmittedAt is the time the request was accepted.
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewSearchRequest creates an immutable SearchRequest with a fresh ID.
func NewSearchRequest(topic Topic, input, searchType string) SearchRequest {
	return SearchRequest{
		ID:          newRequestID(),
		Topic:       topic,
		Input:       input,
		SearchType:  searchType,
		SubmittedAt: time.Now(),
	}
}

// newRequestID returns a random 16-hex-character request identifier.
// We use crypto/rand rather than a counter so IDs are unguessable and
// unique across restarts without coordination.
func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp so a request still gets a usable ID.
		return hex.EncodeToString([]byte(time.Now().Format("150405.000000")))[:16]
	}
	return hex.EncodeToString(b[:])
}
