package outline

import "github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"

var _ driven.OutlineGenerator = (*Generator)(nil)
