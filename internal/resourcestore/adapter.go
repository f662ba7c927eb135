package resourcestore

import "github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"

var _ driven.ResourceStore = (*Store)(nil)
