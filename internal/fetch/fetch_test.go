package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAtExactlyMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("12345"))
	}))
	defer srv.Close()

	f := New(srv.Client())
	result, err := f.Do(context.Background(), srv.URL, domain.FetchOptions{MaxBytes: 5})
	require.NoError(t, err)
	assert.Equal(t, []byte("12345"), result.Body)
	assert.False(t, result.Truncated)
}

func TestDo_OneByteOverMaxBytesFailsContentTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("123456"))
	}))
	defer srv.Close()

	f := New(srv.Client())
	_, err := f.Do(context.Background(), srv.URL, domain.FetchOptions{MaxBytes: 5})
	require.Error(t, err)
	fe, ok := err.(*domain.FetchError)
	require.True(t, ok)
	assert.Equal(t, domain.CodeContentTooLarge, fe.Code)
}

func TestDo_TruncatedGzipFailsContentTooLargeWithoutDecoding(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write(bytes.Repeat([]byte("x"), 1000))
	gw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := New(srv.Client())
	_, err := f.Do(context.Background(), srv.URL, domain.FetchOptions{MaxBytes: 5})
	require.Error(t, err)
	fe, ok := err.(*domain.FetchError)
	require.True(t, ok)
	assert.Equal(t, domain.CodeContentTooLarge, fe.Code)
}

func TestDo_DecodesGzipBody(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("hello world"))
	gw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := New(srv.Client())
	result, err := f.Do(context.Background(), srv.URL, domain.FetchOptions{MaxBytes: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(result.Body))
	_, hasEncoding := result.Headers["content-encoding"]
	assert.False(t, hasEncoding)
}

func TestDo_UnsupportedEncodingFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "compress")
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	f := New(srv.Client())
	_, err := f.Do(context.Background(), srv.URL, domain.FetchOptions{MaxBytes: 1 << 20})
	require.Error(t, err)
	fe, ok := err.(*domain.FetchError)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUnsupportedEncoding, fe.Code)
}

func TestDo_HTTPErrorStatusReturnsTaggedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(srv.Client())
	_, err := f.Do(context.Background(), srv.URL, domain.FetchOptions{MaxBytes: 1 << 20})
	require.Error(t, err)
	fe, ok := err.(*domain.FetchError)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorCode("HTTP_503"), fe.Code)
	assert.True(t, fe.Retryable)
}

func TestParseRetryAfter(t *testing.T) {
	n, ok := ParseRetryAfter("120")
	require.True(t, ok)
	assert.Equal(t, 120, n)

	_, ok = ParseRetryAfter("")
	assert.False(t, ok)
}
