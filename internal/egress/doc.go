// Package egress builds the HTTP clients that provider adapters use to
// reach upstream services.
//
// Lookups normally go out directly, but operators who do not want probes
// to originate from their own address can route everything through a Tor
// SOCKS5 proxy, either an external daemon or an embedded one managed via
// tornago. The package verifies proxy health with a real SOCKS5 handshake
// rather than trusting that something listens on the port.
//
// The package is designed to be used with dependency injection - create a
// Client and pass it to components that need outbound connectivity rather
// than using global state.
package egress
