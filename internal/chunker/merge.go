package chunker

import (
	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// mergeSmallChunks implements §4.10's small-chunk merge: adjacent chunks
// sharing a heading path are combined when the first is well under budget
// and the combination still fits comfortably within it.
func mergeSmallChunks(chunks []domain.Chunk, maxTokens int) []domain.Chunk {
	if len(chunks) == 0 {
		return chunks
	}
	merged := []domain.Chunk{chunks[0]}
	for i := 1; i < len(chunks); i++ {
		last := &merged[len(merged)-1]
		cur := chunks[i]

		if last.HeadingsPath == cur.HeadingsPath &&
			float64(last.EstTokens) < 0.3*float64(maxTokens) {
			joined := last.Text + "\n\n" + cur.Text
			joinedTokens := estimateTokens(joined)
			if float64(joinedTokens) < 0.8*float64(maxTokens) {
				last.Text = joined
				last.CharLen = len(joined)
				last.EstTokens = joinedTokens
				continue
			}
		}
		merged = append(merged, cur)
	}
	return merged
}
