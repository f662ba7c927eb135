package extractors

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DecodeCharset decodes body using the named charset, defaulting to UTF-8.
// Unknown charsets are decoded as UTF-8 and reported via ok=false, so the
// caller can attach an extraction_fallback warning.
func DecodeCharset(body []byte, charset string) (text string, ok bool) {
	enc, recognized := charsetEncoding(charset)
	if enc == nil {
		return string(body), recognized
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body), false
	}
	return string(decoded), true
}

func charsetEncoding(charset string) (encoding.Encoding, bool) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return nil, true // already UTF-8; caller uses body as-is
	case "utf-16", "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), true
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), true
	case "ascii", "us-ascii":
		return charmap.Windows1252, true // ASCII is a strict subset; reuse the superset decoder
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, true
	case "windows-1252", "cp1252":
		return charmap.Windows1252, true
	case "iso-8859-2":
		return charmap.ISO8859_2, true
	case "iso-8859-3":
		return charmap.ISO8859_3, true
	case "iso-8859-4":
		return charmap.ISO8859_4, true
	case "iso-8859-5":
		return charmap.ISO8859_5, true
	case "iso-8859-7":
		return charmap.ISO8859_7, true
	case "iso-8859-9":
		return charmap.ISO8859_9, true
	case "iso-8859-10":
		return charmap.ISO8859_10, true
	case "iso-8859-15":
		return charmap.ISO8859_15, true
	default:
		return nil, false
	}
}
