// Package ssrf rejects fetch targets that resolve to private, reserved, or
// otherwise disallowed network addresses, re-checking every resolved
// address to defend against DNS rebinding (§4.2).
package ssrf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrBlockedHostname is returned for "localhost"/"*.localhost" targets.
var ErrBlockedHostname = errors.New("ssrf: blocked hostname")

// ErrBlockedIP is returned when the host itself or a resolved address falls
// in an enumerated blocked range.
var ErrBlockedIP = errors.New("ssrf: blocked ip address")

// ErrNotAllowlisted is returned when an allowlist is configured and the
// hostname does not match any entry.
var ErrNotAllowlisted = errors.New("ssrf: hostname not in allowlist")

// blockedIPv4 is the enumerated set of disallowed IPv4 CIDR ranges (§4.2).
var blockedIPv4 = mustParseCIDRs(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.88.99.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
)

// blockedIPv6 is the enumerated set of disallowed IPv6 ranges (§4.2), plus
// the two individually blocked addresses (::1, ::).
var blockedIPv6 = mustParseCIDRs(
	"fe80::/10",
	"fc00::/7",
	"ff00::/8",
	"2001:db8::/32",
	"100::/64",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(fmt.Sprintf("ssrf: invalid built-in cidr %q: %v", c, err))
		}
		nets = append(nets, n)
	}
	return nets
}

// allBlockedAddresses covers the exact single addresses §4.2 names outside
// any CIDR block.
var allBlockedAddresses = map[string]bool{
	"::1":             true,
	"::":              true,
	"255.255.255.255": true,
}

// Resolver abstracts DNS lookup so callers/tests can inject a fake.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Guard implements the SSRF check as a standalone component, independent of
// the driven.SSRFGuard port it also satisfies via Adapter.
type Guard struct {
	Resolver  Resolver
	Allowlist []string
}

// New builds a Guard using the standard library resolver.
func New(allowlist []string) *Guard {
	return &Guard{Resolver: net.DefaultResolver, Allowlist: allowlist}
}

// Check resolves host (a bare host or a host:port pair) and rejects it
// per §4.2. It performs the allowlist check first (cheap, no I/O), then the
// literal-hostname check, then resolves DNS and checks every address.
func (g *Guard) Check(ctx context.Context, host string) error {
	host = stripPort(host)

	if len(g.Allowlist) > 0 && !allowlisted(host, g.Allowlist) {
		return ErrNotAllowlisted
	}

	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") {
		return ErrBlockedHostname
	}

	if ip := net.ParseIP(host); ip != nil {
		if IsBlockedIP(ip.String()) {
			return ErrBlockedIP
		}
		return nil
	}

	addrs, err := g.Resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("ssrf: dns lookup failed: %w", err)
	}
	for _, a := range addrs {
		if IsBlockedIP(a.IP.String()) {
			return ErrBlockedIP
		}
	}
	return nil
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func allowlisted(host string, allowlist []string) bool {
	host = strings.ToLower(host)
	for _, entry := range allowlist {
		entry = strings.ToLower(entry)
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// IsBlockedIP reports whether ip (a literal address string) falls in one of
// the enumerated blocked ranges, independent of any allowlist. IPv4-mapped
// IPv6 addresses are checked against the IPv4 rules.
func IsBlockedIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if allBlockedAddresses[parsed.String()] {
		return true
	}
	if v4 := parsed.To4(); v4 != nil {
		for _, n := range blockedIPv4 {
			if n.Contains(v4) {
				return true
			}
		}
		return false
	}
	for _, n := range blockedIPv6 {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}
