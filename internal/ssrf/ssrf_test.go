package ssrf

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	addrs map[string][]net.IPAddr
}

func (f fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	return f.addrs[host], nil
}

func TestIsBlockedIP_PrivateRanges(t *testing.T) {
	blocked := []string{
		"0.0.0.1", "10.0.0.1", "100.64.0.1", "127.0.0.1", "169.254.1.1",
		"172.16.0.1", "192.0.0.1", "192.0.2.1", "192.88.99.1", "192.168.1.1",
		"198.18.0.1", "198.51.100.1", "203.0.113.1", "224.0.0.1", "240.0.0.1",
		"255.255.255.255", "::1", "::", "fe80::1", "fc00::1", "ff00::1",
		"2001:db8::1", "100::1", "::ffff:127.0.0.1",
	}
	for _, ip := range blocked {
		assert.Truef(t, IsBlockedIP(ip), "expected %s to be blocked", ip)
	}
}

func TestIsBlockedIP_PublicAddressesAllowed(t *testing.T) {
	for _, ip := range []string{"8.8.8.8", "1.1.1.1", "93.184.216.34"} {
		assert.Falsef(t, IsBlockedIP(ip), "expected %s to be allowed", ip)
	}
}

func TestCheck_BlockedLiteralHostname(t *testing.T) {
	g := New(nil)
	err := g.Check(context.Background(), "localhost")
	assert.ErrorIs(t, err, ErrBlockedHostname)

	err = g.Check(context.Background(), "sub.localhost")
	assert.ErrorIs(t, err, ErrBlockedHostname)
}

func TestCheck_DNSRebindingRejectsAnyBlockedResolvedAddress(t *testing.T) {
	g := &Guard{Resolver: fakeResolver{addrs: map[string][]net.IPAddr{
		"evil.example.com": {
			{IP: net.ParseIP("8.8.8.8")},
			{IP: net.ParseIP("127.0.0.1")},
		},
	}}}
	err := g.Check(context.Background(), "evil.example.com")
	assert.ErrorIs(t, err, ErrBlockedIP)
}

func TestCheck_AllowsPublicResolvedAddress(t *testing.T) {
	g := &Guard{Resolver: fakeResolver{addrs: map[string][]net.IPAddr{
		"example.com": {{IP: net.ParseIP("93.184.216.34")}},
	}}}
	require.NoError(t, g.Check(context.Background(), "example.com"))
}

func TestCheck_AllowlistRejectsUnlistedHost(t *testing.T) {
	g := New([]string{"example.com"})
	err := g.Check(context.Background(), "attacker.com")
	assert.ErrorIs(t, err, ErrNotAllowlisted)
}

func TestCheck_AllowlistAcceptsSubdomain(t *testing.T) {
	g := &Guard{
		Resolver:  fakeResolver{addrs: map[string][]net.IPAddr{"api.example.com": {{IP: net.ParseIP("93.184.216.34")}}}},
		Allowlist: []string{"example.com"},
	}
	require.NoError(t, g.Check(context.Background(), "api.example.com"))
}
