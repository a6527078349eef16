// Package orchestrator turns accepted search requests into bounded
// concurrent provider work and a single ordered event stream per request.
//
// A request flows: validate, plan (topic to provider set), fan out on a
// bounded pool, aggregate outcomes, emit events, terminate exactly once.
// The aggregator owns all per-request mutable state behind one mutex;
// provider units share nothing.
package orchestrator
