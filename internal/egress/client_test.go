package egress

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewClient verifies construction in direct and proxy modes.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("direct mode needs no proxy", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(10 * time.Second)
		if err != nil {
			t.Fatalf("NewClient() error: %v", err)
		}
		if c.Proxied() {
			t.Error("Proxied() = true, want false")
		}
		if c.ProxyAddress() != "" {
			t.Errorf("ProxyAddress() = %q, want empty", c.ProxyAddress())
		}
	})

	t.Run("valid proxy address is accepted", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(10*time.Second, WithSOCKS5Proxy("127.0.0.1:9050"))
		if err != nil {
			t.Fatalf("NewClient() error: %v", err)
		}
		if !c.Proxied() {
			t.Error("Proxied() = false, want true")
		}
	})

	tests := []struct {
		name    string
		address string
	}{
		{name: "missing port", address: "127.0.0.1"},
		{name: "missing host", address: ":9050"},
		{name: "empty port", address: "127.0.0.1:"},
		{name: "non-numeric port", address: "127.0.0.1:abc"},
		{name: "port too large", address: "127.0.0.1:70000"},
		{name: "port zero", address: "127.0.0.1:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" is rejected", func(t *testing.T) {
			t.Parallel()
			_, err := NewClient(10*time.Second, WithSOCKS5Proxy(tt.address))
			if !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("NewClient(%q) error = %v, want ErrInvalidProxyAddress", tt.address, err)
			}
		})
	}
}

// TestHTTPClientUserAgent verifies that the configured User-Agent is
// injected into outbound requests.
func TestHTTPClientUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(5*time.Second, WithUserAgent("lookup-agent/1.0"))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	resp, err := c.HTTPClient().Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp.Body.Close()

	if gotUA != "lookup-agent/1.0" {
		t.Errorf("User-Agent = %q, want lookup-agent/1.0", gotUA)
	}
}

// TestHTTPClientKeepsExplicitUserAgent verifies that a request-level
// User-Agent wins over the client default.
func TestHTTPClientKeepsExplicitUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(5*time.Second, WithUserAgent("lookup-agent/1.0"))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("User-Agent", "special/2.0")

	resp, err := c.HTTPClient().Do(req)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	resp.Body.Close()

	if gotUA != "special/2.0" {
		t.Errorf("User-Agent = %q, want special/2.0", gotUA)
	}
}

// fakeSOCKS5Server runs a minimal SOCKS5 responder for one connection.
// It performs the no-auth handshake and answers any CONNECT request with
// a host-unreachable reply, which is enough for CheckConnection.
func fakeSOCKS5Server(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()

				// Auth negotiation
				hdr := make([]byte, 2)
				if _, err := io.ReadFull(conn, hdr); err != nil {
					return
				}
				methods := make([]byte, hdr[1])
				if _, err := io.ReadFull(conn, methods); err != nil {
					return
				}
				if _, err := conn.Write([]byte{0x05, 0x00}); err != nil {
					return
				}

				// CONNECT request: read header, hostname, port
				req := make([]byte, 5)
				if _, err := io.ReadFull(conn, req); err != nil {
					return
				}
				rest := make([]byte, int(req[4])+2)
				if _, err := io.ReadFull(conn, rest); err != nil {
					return
				}

				// Reply: host unreachable with a zero bind address
				conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
			}(conn)
		}
	}()

	return ln.Addr().String()
}

// TestCheckConnection tests proxy health checking against fake endpoints.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("direct mode is always OK", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(5 * time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != ProxyStatusOK {
			t.Errorf("CheckConnection() = %v, want ProxyStatusOK", got)
		}
	})

	t.Run("SOCKS5 proxy reports OK", func(t *testing.T) {
		t.Parallel()
		addr := fakeSOCKS5Server(t)
		c, err := NewClient(5*time.Second, WithSOCKS5Proxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != ProxyStatusOK {
			t.Errorf("CheckConnection() = %v, want ProxyStatusOK", got)
		}
	})

	t.Run("HTTP server reports wrong type", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		addr := srv.Listener.Addr().String()
		c, err := NewClient(5*time.Second, WithSOCKS5Proxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != ProxyStatusWrongType {
			t.Errorf("CheckConnection() = %v, want ProxyStatusWrongType", got)
		}
	})

	t.Run("closed port reports cannot connect", func(t *testing.T) {
		t.Parallel()
		// Grab a free port and close it so nothing is listening.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close()

		c, err := NewClient(5*time.Second, WithSOCKS5Proxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != ProxyStatusCannotConnect {
			t.Errorf("CheckConnection() = %v, want ProxyStatusCannotConnect", got)
		}
	})
}

// TestProxyStatus verifies the status-to-error mapping.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  ProxyStatus
		wantErr error
	}{
		{status: ProxyStatusOK, wantErr: nil},
		{status: ProxyStatusWrongType, wantErr: ErrProxyNotSOCKS5},
		{status: ProxyStatusCannotConnect, wantErr: ErrProxyCannotConnect},
		{status: ProxyStatusTimeout, wantErr: ErrProxyTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			t.Parallel()
			if err := tt.status.Error(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Error() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
