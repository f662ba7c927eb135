package driven

import "github.com/custodia-labs/web-fetch-core/internal/core/domain"

// OutlineGenerator builds a code-fence-aware heading tree from markdown (§4.8).
type OutlineGenerator interface {
	// Generate returns the ordered outline entries for md.
	Generate(md string) []domain.OutlineEntry

	// FindHeadingPath replays the scan and returns the heading-path stack
	// state at the last heading whose position is <= charPos.
	FindHeadingPath(md string, charPos int) string
}
