// Package rod renders pages in headless Chrome via go-rod, scrolling until
// lazily loaded content has finished appearing.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/blogstat"
	"github.com/go-rod/rod/lib/proto"
)

// Rendering defaults.
const (
	DefaultScrollPause   = 2 * time.Second
	DefaultMaxScrolls    = 50
	DefaultRenderTimeout = 60 * time.Second
)

// DefaultUserAgent is sent with every page load.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure Renderer implements blogstat.Renderer at compile time.
var _ blogstat.Renderer = (*Renderer)(nil)

// Renderer retrieves fully loaded HTML using Chrome browser automation.
// Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	pool        *BrowserPool
	scrollPause time.Duration
	maxScrolls  int
	timeout     time.Duration
	userAgent   string
	width       int
	height      int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithScrollPause sets how long to wait for new content after each scroll.
// Defaults to DefaultScrollPause (2s) if not specified.
func WithScrollPause(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.scrollPause = d
	}
}

// WithMaxScrolls caps the number of scrolls per page.
// Defaults to DefaultMaxScrolls (50) if not specified.
func WithMaxScrolls(n int) RendererOption {
	return func(r *Renderer) {
		r.maxScrolls = n
	}
}

// WithRenderTimeout sets the hard deadline for rendering a page, including
// time spent waiting for a browser slot.
// Defaults to DefaultRenderTimeout (60s) if not specified.
func WithRenderTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithUserAgent overrides the user agent string.
func WithUserAgent(ua string) RendererOption {
	return func(r *Renderer) {
		r.userAgent = ua
	}
}

// WithViewport sets the browser window size. Defaults to 1920x1080.
func WithViewport(width, height int) RendererOption {
	return func(r *Renderer) {
		r.width = width
		r.height = height
	}
}

// NewRenderer creates a Renderer that opens pages from pool.
// Closing the Renderer closes the pool.
func NewRenderer(pool *BrowserPool, opts ...RendererOption) *Renderer {
	r := &Renderer{
		pool:        pool,
		scrollPause: DefaultScrollPause,
		maxScrolls:  DefaultMaxScrolls,
		timeout:     DefaultRenderTimeout,
		userAgent:   DefaultUserAgent,
		width:       1920,
		height:      1080,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxScrolls <= 0 {
		r.maxScrolls = DefaultMaxScrolls
	}
	if r.timeout <= 0 {
		r.timeout = DefaultRenderTimeout
	}
	return r
}

// Render navigates to the URL, scrolls until the page stops growing, and
// returns the rendered HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browser, release, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	// Set context for all subsequent operations
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  r.width,
		Height: r.height,
	}); err != nil {
		return "", fmt.Errorf("setting viewport: %w", err)
	}
	if r.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
			return "", fmt.Errorf("setting user agent: %w", err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for %s to load: %w", url, err)
	}

	if _, err := ScrollUntilStable(ctx, pageScroller{page: page}, r.scrollPause, r.maxScrolls); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading rendered HTML: %w", err)
	}

	return html, nil
}

// Close releases browser resources.
func (r *Renderer) Close() error {
	return r.pool.Close()
}
