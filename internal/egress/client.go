package egress

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout is the timeout for checking if the SOCKS5 proxy is
// available. We use a short timeout here because this is just a
// connectivity check, not an actual request through the proxy.
const checkProxyTimeout = 2 * time.Second

// Client builds outbound HTTP clients for provider adapters.
// In direct mode requests go straight out; in proxy mode all traffic is
// routed through a SOCKS5 proxy (typically a Tor daemon).
//
// Design decision: Providers receive an *http.Client from this factory
// instead of building their own. That keeps the routing decision (direct
// vs Tor) and the shared settings (User-Agent, timeouts, redirect limits)
// in one place, and lets tests swap the transport wholesale.
type Client struct {
	// proxyAddress is the SOCKS5 proxy address in "host:port" format.
	// Empty means direct egress.
	proxyAddress string

	// dialer is the SOCKS5 dialer when proxyAddress is set.
	// We cache this to avoid recreating it for each connection.
	dialer proxy.Dialer

	// timeout is the default timeout for HTTP clients built here.
	timeout time.Duration

	// userAgent is injected into every outbound request.
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithSOCKS5Proxy routes all traffic through the given SOCKS5 proxy.
// The address must be in "host:port" format (e.g., "127.0.0.1:9050").
func WithSOCKS5Proxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithUserAgent sets the User-Agent header injected into every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new egress client with the given default timeout.
//
// When a proxy is configured, this validates the address format but does
// not verify that the proxy is actually running. Call CheckConnection()
// to verify.
//
// Design decision: We don't connect to the proxy in the constructor because:
// 1. It allows creating the client even when the proxy isn't running yet
// 2. It separates object creation from network operations
// 3. It allows for better testing with mock proxies
func NewClient(timeout time.Duration, opts ...Option) (*Client, error) {
	c := &Client{timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress != "" {
		if !isValidProxyAddress(c.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		// nil auth because Tor's SOCKS port typically doesn't require it
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, err
		}
		c.dialer = dialer
	}

	return c, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	if host == "" || port == "" {
		return false
	}
	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}
	return portNum >= 1
}

// Proxied reports whether traffic is routed through a SOCKS5 proxy.
func (c *Client) Proxied() bool {
	return c.proxyAddress != ""
}

// ProxyAddress returns the configured proxy address, or empty for direct.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// HTTPClient returns a new *http.Client configured according to the
// egress mode. Every request carries the configured User-Agent.
//
// Design decisions:
// - No cookie jar: lookups are stateless single requests
// - Redirect limit is 10 to prevent redirect loops while allowing normal redirects
// - In proxy mode, idle connection limits are smaller than defaults because
//   each connection consumes a Tor circuit, which is a limited resource
func (c *Client) HTTPClient() *http.Client {
	var transport http.RoundTripper
	if c.dialer != nil {
		transport = &http.Transport{
			DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
				return c.dialer.Dial(network, addr)
			},
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		}
	} else {
		transport = http.DefaultTransport
	}

	if c.userAgent != "" {
		transport = &userAgentTransport{base: transport, userAgent: c.userAgent}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// userAgentTransport wraps an http.RoundTripper to set the User-Agent on
// every request that does not already carry one.
//
// Design decision: We inject at the transport level rather than at each
// request site so redirects and subrequests carry the same agent string.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
	socks5CmdConnect   = 0x01
	socks5AddrTypeDom  = 0x03

	// socks5TestHost is a synthetic hostname used for SOCKS5 verification.
	// This is intentionally a non-resolvable address - we only need to verify
	// the proxy responds to SOCKS5 CONNECT requests, not that the connection
	// succeeds. Using a fake address avoids any interaction with real services.
	socks5TestHost = "connectivity-check.invalid"
)

// CheckConnection verifies that the SOCKS5 proxy is running and accessible.
// It returns a ProxyStatus indicating the result of the check. It always
// returns ProxyStatusOK in direct mode.
//
// The check works by performing a SOCKS5 protocol handshake to verify:
// 1. The proxy speaks SOCKS5 protocol
// 2. The proxy accepts connections without authentication
// 3. The proxy processes CONNECT requests
//
// Security note: This is more robust than just checking HTTP response strings,
// as a fake proxy cannot easily mimic proper SOCKS5 protocol behavior.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Step 1: version negotiation. We offer no authentication only.
	_, err = conn.Write([]byte{socks5Version, 0x01, socks5AuthNone})
	if err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		// Anything else means it didn't speak SOCKS5 properly
		return ProxyStatusWrongType
	}

	if authResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	if authResp[1] == socks5AuthNoAccept || authResp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	// Step 2: verify the proxy processes connection requests. The target
	// does not exist; any well-formed SOCKS5 reply (success or failure
	// code) proves it is actually proxying, not just shaking hands.
	testPort := uint16(80)
	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDom,
		byte(len(socks5TestHost)),
	}
	connectReq = append(connectReq, []byte(socks5TestHost)...)
	connectReq = append(connectReq, byte(testPort>>8), byte(testPort&0xFF))

	if _, err = conn.Write(connectReq); err != nil {
		return ProxyStatusCannotConnect
	}

	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}
