package urlutil

import "github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"

// Adapter implements driven.URLNormalizer over the package-level functions.
type Adapter struct{}

var _ driven.URLNormalizer = Adapter{}

func (Adapter) Normalize(rawURL string) string       { return Normalize(rawURL) }
func (Adapter) IsAllowedProtocol(rawURL string) bool { return IsAllowedProtocol(rawURL) }
func (Adapter) Hostname(rawURL string) (string, bool) { return Hostname(rawURL) }
func (Adapter) Origin(rawURL string) (string, bool)   { return Origin(rawURL) }
