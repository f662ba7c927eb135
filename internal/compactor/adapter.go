package compactor

import "github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"

var _ driven.Compactor = (*Compactor)(nil)
