package collectors

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps any single response body
const maxResponseBytes = 32 << 20

// Fetcher is the shared rate-limited HTTP client used by collectors
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    arbor.ILogger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = client }
}

// WithRateLimit sets requests per second
func WithRateLimit(perSecond float64) FetcherOption {
	return func(f *Fetcher) { f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// NewFetcher creates a fetcher with a per-request timeout
func NewFetcher(userAgent string, timeout time.Duration, logger arbor.ILogger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(4), 1),
		userAgent: userAgent,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the body of a 2xx response. Any other outcome is a *FetchError.
func (f *Fetcher) Get(ctx context.Context, source, url string, header http.Header) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" && f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: source, URL: url, StatusCode: resp.StatusCode}
	}

	f.logger.Debug().Str("source", source).Str("url", url).Int("bytes", len(body)).Msg("Fetched")
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into v
func (f *Fetcher) GetJSON(ctx context.Context, source, url string, header http.Header, v interface{}) error {
	body, err := f.Get(ctx, source, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{Source: source, Err: err}
	}
	return nil
}

// GetXML fetches url and decodes the XML body into v
func (f *Fetcher) GetXML(ctx context.Context, source, url string, header http.Header, v interface{}) error {
	body, err := f.Get(ctx, source, url, header)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return &ParseError{Source: source, Err: err}
	}
	return nil
}

// GetEUCKR fetches a legacy Korean page and returns it as UTF-8
func (f *Fetcher) GetEUCKR(ctx context.Context, source, url string, header http.Header) ([]byte, error) {
	body, err := f.Get(ctx, source, url, header)
	if err != nil {
		return nil, err
	}
	decoded, err := DecodeEUCKR(body)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return decoded, nil
}

// DecodeEUCKR converts EUC-KR bytes to UTF-8
func DecodeEUCKR(data []byte) ([]byte, error) {
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), korean.EUCKR.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode EUC-KR: %w", err)
	}
	return decoded, nil
}
