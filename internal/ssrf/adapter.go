package ssrf

import "github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"

var _ driven.SSRFGuard = (*Guard)(nil)

// IsBlockedIP satisfies driven.SSRFGuard; delegates to the package function.
func (g *Guard) IsBlockedIP(ip string) bool {
	return IsBlockedIP(ip)
}
