package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"

	"github.com/Doc-Inf/Finanza/pkg/logger"
)

const defaultBaseURL = "https://finance.yahoo.com"

// A common desktop UA; the quote host serves bot-detected clients a consent
// interstitial instead of the page.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.88 Safari/537.36"

// FetchResult is the outcome of one page fetch. Failure carries the
// diagnostic for "no usable page" conditions (bad status, empty body) so no
// shared last-error state is needed.
type FetchResult struct {
	HTML        string
	FinalURL    string
	Status      int
	Failure     string
	FetchTimeMs int64
}

// OK reports whether a usable page came back.
func (r *FetchResult) OK() bool {
	return r != nil && r.Failure == "" && r.HTML != ""
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	InsecureTLS bool
	RatePerSec  float64
}

type Fetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}

	jar, _ := cookiejar.New(nil)
	return &Fetcher{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					// relaxed only via the local/sandboxed dev switch
					InsecureSkipVerify: cfg.InsecureTLS,
				},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

// FetchQuotePage downloads the quote page for symbol. Transport faults come
// back as errors; a reachable host that served nothing usable comes back as
// a result with Failure set.
func (f *Fetcher) FetchQuotePage(ctx context.Context, symbol string) (*FetchResult, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/quote/%s/", f.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	result := &FetchResult{
		FinalURL:    resp.Request.URL.String(),
		Status:      resp.StatusCode,
		FetchTimeMs: time.Since(start).Milliseconds(),
	}

	if resp.StatusCode != http.StatusOK {
		result.Failure = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return result, nil
	}

	html, err := Decompress(body)
	if err != nil {
		result.Failure = "gzip decode: " + err.Error()
		return result, nil
	}
	if len(html) == 0 {
		result.Failure = "empty body"
		return result, nil
	}

	result.HTML = string(html)

	logger.Log.Debug().
		Str("symbol", symbol).
		Int("html_len", len(result.HTML)).
		Int64("time_ms", result.FetchTimeMs).
		Msg("quote page fetched")

	return result, nil
}

// Decompress sniffs the gzip magic bytes and inflates when present. The
// transport requests gzip explicitly, so the stdlib does not unwrap it.
func Decompress(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
