// Package model defines the core data structures used throughout osintdeck.
//
// This package contains the following main types:
//   - Topic: One searchable identifier class (domain, username, github, ...)
//   - SearchRequest: An immutable client-submitted search
//   - Outcome: The normalized result/failure/progress emission of a provider unit
//   - Event: The wire envelope streamed to clients over a session channel
//   - Per-module payload structs (WhoisRecord, GitHubProfile, RedditProfile, ...)
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (provider, orchestrator, session, report)
// need to use these types, so centralizing them prevents import cycles.
//
// Provider payloads are explicit structs rather than untyped maps: each
// adapter normalizes its upstream response at the boundary, and everything
// past that boundary works with typed data. The only map-shaped structure is
// the aggregator's merged view of multi-part modules, which exists to give
// partial payloads shallow-merge semantics on the wire.
package model
