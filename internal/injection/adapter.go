package injection

import "github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"

var _ driven.InjectionDetector = (*Detector)(nil)
