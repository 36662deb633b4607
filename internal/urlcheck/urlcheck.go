// Package urlcheck guards outgoing requests to user supplied URLs against
// server-side request forgery.
package urlcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var (
	// ErrInvalidURL is returned for URLs that are malformed or use an unsupported scheme or port.
	ErrInvalidURL = errors.New("invalid url")
	// ErrForbiddenHost is returned for hosts that resolve to non-public addresses.
	ErrForbiddenHost = errors.New("forbidden host")
)

const maxRedirects = 5

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Checker validates URLs before they are fetched.
type Checker struct {
	Resolver Resolver
	// AllowPrivate disables the address checks. Only for tests and local development.
	AllowPrivate bool
	// Ports allowed besides the scheme defaults.
	Ports []string
}

// New returns a checker using the system resolver.
func New(allowPrivate bool) *Checker {
	return &Checker{Resolver: net.DefaultResolver, AllowPrivate: allowPrivate}
}

var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// IsForbiddenIP reports whether addr is not a public unicast address.
// IPv4-mapped IPv6 addresses are judged by their IPv4 form.
func IsForbiddenIP(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() {
		return true
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func forbiddenName(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" {
		return true
	}
	for _, suffix := range []string{".localhost", ".local", ".internal", ".home.arpa"} {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// numericHost matches shorthand and octal or hex IPv4 forms such as 127.1
// or 0x7f.0.0.1 that net/netip refuses but some resolvers accept.
func numericHost(host string) bool {
	if strings.HasPrefix(strings.ToLower(host), "0x") {
		return true
	}
	for _, r := range host {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// Validate parses raw and checks that it may be fetched: http or https, no
// credentials, a default or allowed port and a host resolving only to
// public addresses.
func (c *Checker) Validate(ctx context.Context, raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	if u.User != nil {
		return nil, fmt.Errorf("%w: credentials not allowed", ErrInvalidURL)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if !c.portAllowed(u.Scheme, u.Port()) {
		return nil, fmt.Errorf("%w: port %s not allowed", ErrInvalidURL, u.Port())
	}
	if c.AllowPrivate {
		return u, nil
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if IsForbiddenIP(addr) {
			return nil, fmt.Errorf("%w: %s", ErrForbiddenHost, host)
		}
		return u, nil
	}
	if numericHost(host) {
		return nil, fmt.Errorf("%w: ambiguous numeric host %s", ErrInvalidURL, host)
	}
	if forbiddenName(host) {
		return nil, fmt.Errorf("%w: %s", ErrForbiddenHost, host)
	}

	addrs, err := c.Resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot resolve %s: %v", ErrForbiddenHost, host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s has no addresses", ErrForbiddenHost, host)
	}
	for _, addr := range addrs {
		if IsForbiddenIP(addr) {
			return nil, fmt.Errorf("%w: %s resolves to %s", ErrForbiddenHost, host, addr)
		}
	}
	return u, nil
}

func (c *Checker) portAllowed(scheme, port string) bool {
	if port == "" {
		return true
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return true
	}
	for _, p := range c.Ports {
		if p == port {
			return true
		}
	}
	return false
}

// Client returns an HTTP client that re-checks every address it connects
// to, so a host cannot pass Validate and then rebind its DNS to an internal
// address. Redirects are validated like the original URL.
func (c *Checker) Client(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: timeout,
		Control: func(network, address string, _ syscall.RawConn) error {
			if c.AllowPrivate {
				return nil
			}
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			addr, err := netip.ParseAddr(host)
			if err != nil || IsForbiddenIP(addr) {
				return fmt.Errorf("%w: connection to %s refused", ErrForbiddenHost, host)
			}
			return nil
		},
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			_, err := c.Validate(req.Context(), req.URL.String())
			return err
		},
	}
}
