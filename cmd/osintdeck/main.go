// Package main provides the entry point for the osintdeck CLI.
//
// osintdeck aggregates open-source intelligence about an identifier
// (domain, username, account ID, image URL) from many upstream sources
// at once. It runs either as a WebSocket server for a web frontend or
// as a one-shot command-line lookup.
//
// Usage:
//
//	osintdeck serve
//	osintdeck lookup <topic> <input>
//
// See --help for all available options.
package main

// main is the entry point for osintdeck.
func main() {
	Execute()
}
