package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCharset_UTF8PassesThrough(t *testing.T) {
	text, ok := DecodeCharset([]byte("hello"), "utf-8")
	assert.True(t, ok)
	assert.Equal(t, "hello", text)
}

func TestDecodeCharset_DefaultsToUTF8(t *testing.T) {
	text, ok := DecodeCharset([]byte("hello"), "")
	assert.True(t, ok)
	assert.Equal(t, "hello", text)
}

func TestDecodeCharset_Windows1252Decodes(t *testing.T) {
	// 0x93/0x94 are curly quotes in windows-1252.
	body := []byte{0x93, 'h', 'i', 0x94}
	text, ok := DecodeCharset(body, "windows-1252")
	assert.True(t, ok)
	assert.Contains(t, text, "hi")
}

func TestDecodeCharset_UnknownCharsetReturnsNotOK(t *testing.T) {
	_, ok := DecodeCharset([]byte("hello"), "x-made-up-charset")
	assert.False(t, ok)
}

func TestDecodeCharset_Latin1Decodes(t *testing.T) {
	body := []byte{0xe9} // e-acute in latin1
	text, ok := DecodeCharset(body, "iso-8859-1")
	assert.True(t, ok)
	assert.NotEmpty(t, text)
}
