// Package history persists search lifecycles in SQLite. Each accepted
// request becomes a row keyed by its ID; the terminal event fills in
// the status, failure count, and merged results. The fingerprint column
// (SHA3-256 over topic and input) lets repeated lookups of the same
// target be grouped without storing queryable plaintext twice.
package history
