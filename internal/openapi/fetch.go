package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// leveledZerolog adapts zerolog to retryablehttp.LeveledLogger.
type leveledZerolog struct {
	inner zerolog.Logger
}

// Error is logged at warn level because the client retries.
func (l leveledZerolog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Info(msg string, keysAndValues ...any) {
	l.inner.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug().Fields(keysAndValues).Msg(msg)
}

// FetchOption configures a Fetcher.
type FetchOption func(*retryablehttp.Client)

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) FetchOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
	}
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(waitMin, waitMax time.Duration) FetchOption {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) FetchOption {
	return func(c *retryablehttp.Client) {
		c.HTTPClient.Timeout = d
	}
}

// Fetcher retrieves documents over HTTP, retrying connection errors and 5xx
// responses.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher returns a Fetcher logging retries to logger.
func NewFetcher(logger zerolog.Logger, opts ...FetchOption) *Fetcher {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 250 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.HTTPClient.Timeout = 30 * time.Second
	c.Logger = retryablehttp.LeveledLogger(leveledZerolog{inner: logger})
	for _, opt := range opts {
		opt(c)
	}
	return &Fetcher{client: c}
}

// Fetch downloads the raw document at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return data, nil
}

// IsRemote reports whether source names an HTTP(S) location.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ReadSource returns the raw bytes of source, a URL or a local path.
func (f *Fetcher) ReadSource(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		return f.Fetch(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading OpenAPI file: %w", err)
	}
	return data, nil
}

// Load reads and decodes the document at source.
func (f *Fetcher) Load(ctx context.Context, source string) (*Document, []byte, error) {
	data, err := f.ReadSource(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}
