package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	plain := []byte("<html><body>quote</body></html>")

	got, err := Decompress(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, got, "plain bytes pass through untouched")

	compressed := gzipBytes(t, string(plain))
	got, err = Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	// gzip magic but corrupted stream
	_, err = Decompress([]byte{0x1f, 0x8b, 0x00})
	assert.Error(t, err)
}

func newTestFetcher(baseURL string) *Fetcher {
	return New(Config{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		RatePerSec: 1000,
	})
}

func TestFetchQuotePage_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/AAPL/", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte("<html>page</html>"))
	}))
	defer srv.Close()

	result, err := newTestFetcher(srv.URL).FetchQuotePage(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, "<html>page</html>", result.HTML)
	assert.Equal(t, http.StatusOK, result.Status)
}

func TestFetchQuotePage_GzipBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// raw gzip bytes without Content-Encoding, the sniffer has to catch it
		w.Write(gzipBytes(t, "<html>zipped</html>"))
	}))
	defer srv.Close()

	result, err := newTestFetcher(srv.URL).FetchQuotePage(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, "<html>zipped</html>", result.HTML)
}

func TestFetchQuotePage_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := newTestFetcher(srv.URL).FetchQuotePage(context.Background(), "NOPE")
	require.NoError(t, err, "bad status is an outcome, not an error")
	assert.False(t, result.OK())
	assert.Equal(t, "HTTP 404", result.Failure)
}

func TestFetchQuotePage_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	result, err := newTestFetcher(srv.URL).FetchQuotePage(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, "empty body", result.Failure)
}

func TestFetchQuotePage_TransportError(t *testing.T) {
	result, err := newTestFetcher("http://127.0.0.1:1").FetchQuotePage(context.Background(), "AAPL")
	assert.Error(t, err)
	assert.Nil(t, result)
}
