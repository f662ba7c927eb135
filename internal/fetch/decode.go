package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// parseContentEncoding comma-splits, lowercases, and drops "identity" from a
// Content-Encoding header value, per §4.5 step 3.
func parseContentEncoding(header string) []string {
	if header == "" {
		return nil
	}
	var codecs []string
	for _, part := range strings.Split(header, ",") {
		c := strings.ToLower(strings.TrimSpace(part))
		if c == "" || c == "identity" {
			continue
		}
		codecs = append(codecs, c)
	}
	return codecs
}

// decodeBody applies codecs in reverse order (outermost encoding was
// applied last, so it must be removed first), each bounded by maxBytes.
func decodeBody(body []byte, codecs []string, maxBytes int64) ([]byte, bool, error) {
	current := body
	for i := len(codecs) - 1; i >= 0; i-- {
		decoded, truncated, err := decodeOne(current, codecs[i], maxBytes)
		if err != nil {
			return nil, false, err
		}
		current = decoded
		if truncated {
			return current, true, nil
		}
	}
	return current, false, nil
}

func decodeOne(body []byte, codec string, maxBytes int64) ([]byte, bool, error) {
	var r io.Reader
	switch codec {
	case "gzip", "x-gzip":
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, false, fmt.Errorf("decompression failed: %w", err)
		}
		defer gr.Close()
		r = gr
	case "deflate", "x-deflate":
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		r = fr
	case "br":
		r = brotli.NewReader(bytes.NewReader(body))
	default:
		return nil, false, errUnsupportedEncoding(codec)
	}

	limited := io.LimitReader(r, maxBytes+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, false, fmt.Errorf("decompression failed: %w", err)
	}
	if int64(len(out)) > maxBytes {
		return out[:maxBytes], true, nil
	}
	return out, false, nil
}

type unsupportedEncodingError struct{ codec string }

func (e unsupportedEncodingError) Error() string { return "unsupported encoding: " + e.codec }

func errUnsupportedEncoding(codec string) error { return unsupportedEncodingError{codec: codec} }
