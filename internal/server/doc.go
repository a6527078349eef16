// Package server exposes the HTTP surface: per-topic session channels
// upgraded to WebSocket under /ws/:topic, plus a small JSON API for
// health and search history. The server owns no search logic; it binds
// connections to sessions and sessions to the orchestrator.
package server
