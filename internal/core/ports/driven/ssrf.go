package driven

import "context"

// SSRFGuard rejects requests aimed at private, reserved, or disallowed
// network targets, resolving DNS to defend against rebinding (§4.2).
type SSRFGuard interface {
	// Check resolves hostOrURL's host and rejects it if the host itself or
	// any resolved A/AAAA address falls in a blocked range, is a blocked
	// literal hostname, or (when an allowlist is configured) is absent from it.
	Check(ctx context.Context, hostOrURL string) error

	// IsBlockedIP reports whether ip falls in one of the enumerated
	// IPv4/IPv6 blocked ranges, independent of any allowlist.
	IsBlockedIP(ip string) bool
}
