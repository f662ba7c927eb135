package driven

import "github.com/custodia-labs/web-fetch-core/internal/core/domain"

// InjectionDetector scans normalized markdown for prompt-injection markers
// from the fixed catalogue in §4.7.
type InjectionDetector interface {
	// Detect returns one UnsafeInstruction per distinct (match_text, reason)
	// pair found in text, each carrying a ±50-char context window.
	Detect(text string) []domain.UnsafeInstruction
}
