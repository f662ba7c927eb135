package extractors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Extractor = (*JSONExtractor)(nil)

const (
	jsonMaxObjectKeys  = 20
	jsonMaxArraySample = 3
	jsonMaxStringLen   = 200
	jsonMaxDepth       = 5
	jsonMaxRawSize     = 5000
)

// JSONExtractor implements driven.Extractor for application/json bodies: it
// renders a depth-bounded schema summary as Markdown plus a truncated
// pretty-printed raw sample.
type JSONExtractor struct{}

// NewJSONExtractor constructs a JSONExtractor.
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// Kind implements driven.Extractor.
func (e *JSONExtractor) Kind() domain.ContentKind {
	return domain.KindJSON
}

// Extract implements driven.Extractor.
func (e *JSONExtractor) Extract(input domain.ExtractInput) (*domain.ExtractedContent, error) {
	var value any
	var warnings []domain.Warning

	if err := json.Unmarshal([]byte(input.Text), &value); err != nil {
		warnings = append(warnings, domain.Warning{
			Type:    domain.WarningExtractionFallback,
			Message: "body declared JSON but failed to parse; treating it as opaque text",
		})
		return &domain.ExtractedContent{
			Content:     truncateRaw(input.Text),
			TextContent: input.Text,
			Markdown:    "```\n" + truncateRaw(input.Text) + "\n```",
			Warnings:    warnings,
		}, nil
	}

	var b strings.Builder
	b.WriteString("## Schema\n\n")
	summarizeValue(&b, value, 0)

	b.WriteString("\n## Sample\n\n```json\n")
	b.WriteString(truncateRaw(prettyPrint(value)))
	b.WriteString("\n```\n")

	md := b.String()

	return &domain.ExtractedContent{
		Content:     md,
		TextContent: md,
		Markdown:    md,
		Warnings:    warnings,
	}, nil
}

func prettyPrint(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

func truncateRaw(s string) string {
	if len(s) <= jsonMaxRawSize {
		return s
	}
	return strings.TrimSpace(s[:jsonMaxRawSize]) + "\n... (truncated)"
}

func summarizeValue(b *strings.Builder, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	if depth >= jsonMaxDepth {
		fmt.Fprintf(b, "%s- ... (max depth reached)\n", indent)
		return
	}

	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		shown := keys
		truncated := false
		if len(shown) > jsonMaxObjectKeys {
			shown = shown[:jsonMaxObjectKeys]
			truncated = true
		}
		for _, k := range shown {
			fmt.Fprintf(b, "%s- **%s**: %s\n", indent, k, typeLabel(val[k]))
			summarizeValue(b, val[k], depth+1)
		}
		if truncated {
			fmt.Fprintf(b, "%s- ... (%d more keys)\n", indent, len(keys)-jsonMaxObjectKeys)
		}
	case []any:
		sample := val
		truncated := false
		if len(sample) > jsonMaxArraySample {
			sample = sample[:jsonMaxArraySample]
			truncated = true
		}
		for i, item := range sample {
			fmt.Fprintf(b, "%s- [%d] %s\n", indent, i, typeLabel(item))
			summarizeValue(b, item, depth+1)
		}
		if truncated {
			fmt.Fprintf(b, "%s- ... (%d more items)\n", indent, len(val)-jsonMaxArraySample)
		}
	default:
		// scalars already summarized by the parent via typeLabel
	}
}

func typeLabel(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("boolean (%v)", val)
	case float64:
		return fmt.Sprintf("number (%v)", val)
	case string:
		s := val
		if len(s) > jsonMaxStringLen {
			s = s[:jsonMaxStringLen] + "..."
		}
		return fmt.Sprintf("string (%q)", s)
	case map[string]any:
		return fmt.Sprintf("object (%d keys)", len(val))
	case []any:
		return fmt.Sprintf("array (%d items)", len(val))
	default:
		return "unknown"
	}
}
