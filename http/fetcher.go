// Package http provides the HTTP API server and the HTTP clients blogstat
// uses: a static page renderer and the upstream profile lookup services.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/blogstat"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxPageSize caps the number of bytes read from a page.
const DefaultMaxPageSize = 20 << 20

// DefaultUserAgent is sent with every page request.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure Fetcher implements blogstat.Renderer at compile time.
var _ blogstat.Renderer = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// Unlike rod.Renderer, this does not execute JavaScript or scroll, so it
// only sees content present in the initial response.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxSize   int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxPageSize caps how much of a response body is read.
// Larger pages fail with EUPSTREAM. Defaults to DefaultMaxPageSize.
func WithMaxPageSize(n int64) Option {
	return func(f *Fetcher) {
		f.maxSize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxSize:   DefaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxSize <= 0 {
		f.maxSize = DefaultMaxPageSize
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Render retrieves the HTML content from the given URL.
func (f *Fetcher) Render(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", blogstat.Errorf(blogstat.EINVALID, "invalid URL %q: %v", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", blogstat.Errorf(blogstat.EUPSTREAM, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(body)) > f.maxSize {
		return "", blogstat.Errorf(blogstat.EUPSTREAM, "page %s exceeds %d bytes", url, f.maxSize)
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
