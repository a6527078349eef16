// Package provider contains the adapters that talk to upstream OSINT
// sources. Each adapter normalizes one source (a registry, a social
// platform, a lookup API) into the model package's typed payloads and a
// shared failure taxonomy.
//
// Adapters are stateless: they hold an injected *http.Client and
// configuration, never request-scoped data. Multi-part adapters emit
// several partial successes for the same module and finish with one
// terminal outcome; merging partials is the aggregator's job, not theirs.
//
// Design decision: Adapters never write to the wire. They emit
// model.Outcome values through a callback and leave event shaping to the
// orchestrator, which keeps the upstream quirks (field renames, HTML
// stripping, snowflake math) in one testable layer.
package provider
