// Package session manages per-topic client channels over WebSocket.
//
// Each channel serves exactly one topic: the client subscribes to
// "/ws/<topic>", receives a connection greeting, and then exchanges
// topic-scoped events (search_<topic>, cancel_search_<topic> inbound;
// search_result, search_progress, search_complete outbound). A single
// writer goroutine per session keeps emission order intact; closing a
// session cancels any in-flight request so no work is orphaned.
package session
