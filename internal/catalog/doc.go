// Package catalog loads and caches the WhatsMyName site catalog used by
// the username fan-out scan.
//
// The catalog is a community-maintained JSON file describing several
// hundred sites: the URL pattern to probe for an account and the status
// code and body marker that distinguish an existing account from a miss.
// Because the upstream file lives on GitHub and changes slowly, the
// package caches a copy under the XDG cache directory and serves the
// cached copy when it is fresh or when the network is unavailable.
package catalog
