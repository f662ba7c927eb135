// Package outline implements the code-fence-aware heading outline (§4.8, C9).
package outline

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

var atxHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

type fenceState struct {
	inFence bool
	char    byte
	length  int
}

// enter opens a fence on a line starting with 3+ backticks or tildes.
// exit closes it only on a closing fence of the same character and
// equal-or-greater length.
func (f *fenceState) update(line string) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return
	}
	char := trimmed[0]
	if char != '`' && char != '~' {
		return
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == char {
		n++
	}
	if n < 3 {
		return
	}

	if !f.inFence {
		f.inFence = true
		f.char = char
		f.length = n
		return
	}
	if char == f.char && n >= f.length {
		f.inFence = false
	}
}

// Generator produces outlines from normalized markdown.
type Generator struct{}

// New constructs a Generator.
func New() *Generator {
	return &Generator{}
}

// Generate walks md line by line, skipping code-fenced regions, and emits
// one OutlineEntry per ATX heading with a dotted ancestor path.
func (g *Generator) Generate(md string) []domain.OutlineEntry {
	var entries []domain.OutlineEntry
	var stack []domain.OutlineEntry
	var fence fenceState

	for _, line := range splitLinesKeepEnds(md) {
		trimmedLine := strings.TrimRight(line, "\r\n")
		wasInFence := fence.inFence
		fence.update(trimmedLine)
		if wasInFence {
			continue
		}

		m := atxHeadingRe.FindStringSubmatch(trimmedLine)
		if m == nil {
			continue
		}
		level := len(m[1])
		text := strings.TrimSpace(m[2])

		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, domain.OutlineEntry{Level: level, Text: text})

		path := joinPath(stack)
		entry := domain.OutlineEntry{Level: level, Text: text, Path: path}
		stack[len(stack)-1] = entry
		entries = append(entries, entry)
	}
	return entries
}

// FindHeadingPath replays the same scan and returns the ancestor path in
// effect at the last heading whose start position is <= charPos.
func (g *Generator) FindHeadingPath(md string, charPos int) string {
	var stack []domain.OutlineEntry
	var fence fenceState
	var lastPath string

	pos := 0
	for _, line := range splitLinesKeepEnds(md) {
		lineStart := pos
		pos += len(line)
		if lineStart > charPos {
			break
		}

		trimmedLine := strings.TrimRight(line, "\r\n")
		wasInFence := fence.inFence
		fence.update(trimmedLine)
		if wasInFence {
			continue
		}

		m := atxHeadingRe.FindStringSubmatch(trimmedLine)
		if m == nil {
			continue
		}
		level := len(m[1])
		text := strings.TrimSpace(m[2])

		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, domain.OutlineEntry{Level: level, Text: text})
		lastPath = joinPath(stack)
	}
	return lastPath
}

func joinPath(stack []domain.OutlineEntry) string {
	parts := make([]string, len(stack))
	for i, e := range stack {
		parts[i] = e.Text
	}
	return strings.Join(parts, " > ")
}

// splitLinesKeepEnds splits s into lines, each retaining its trailing "\n"
// (if present) so callers can track byte offsets.
func splitLinesKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
