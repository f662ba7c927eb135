package domain

import "time"

// ContentKind is the sniffed/declared kind driving extractor selection.
type ContentKind string

const (
	KindHTML     ContentKind = "html"
	KindMarkdown ContentKind = "markdown"
	KindPDF      ContentKind = "pdf"
	KindJSON     ContentKind = "json"
	KindXML      ContentKind = "xml"
	KindText     ContentKind = "text"
	KindUnknown  ContentKind = "unknown"
)

// ExtractedContent is the common intermediate every per-type extractor produces,
// before the normalizer turns it into a Packet.
type ExtractedContent struct {
	Title         string
	Content       string
	TextContent   string
	Excerpt       string
	Byline        string
	SiteName      string
	Lang          string
	PublishedTime *time.Time
	Markdown      string
	Warnings      []Warning
}

// ExtractInput is the common input every extractor accepts: decoded text plus
// the context the normalizer gathered before dispatch.
type ExtractInput struct {
	Text         string
	ContentType  string
	CanonicalURL string
}
