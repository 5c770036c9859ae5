package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/blogstat"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// DefaultMaxConcurrent is the default number of pages rendered at once.
const DefaultMaxConcurrent = 3

// BrowserPool shares one headless Chrome between requests.
//
// At most maxConcurrent pages are open at any time; further callers block in
// Acquire until a slot frees up or their context ends. Chrome accumulates
// memory over time and the baseline never returns to initial levels, so the
// browser is relaunched once maxPages pages have been processed and no page
// is still open on it.
//
// BrowserPool is safe for concurrent use.
type BrowserPool struct {
	sem           *semaphore.Weighted
	maxConcurrent int64
	maxPages      int64
	headless      bool

	mu        sync.Mutex
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	active    int64
	closed    atomic.Bool
}

// PoolOption configures a BrowserPool.
type PoolOption func(*BrowserPool)

// WithMaxPages sets the maximum number of pages before the browser is recycled.
// Defaults to 75 if not specified.
func WithMaxPages(n int64) PoolOption {
	return func(bp *BrowserPool) {
		bp.maxPages = n
	}
}

// WithMaxConcurrent sets how many pages may be open at once.
// Defaults to 3 if not specified.
func WithMaxConcurrent(n int64) PoolOption {
	return func(bp *BrowserPool) {
		bp.maxConcurrent = n
	}
}

// WithHeadless toggles headless mode. Defaults to true.
func WithHeadless(headless bool) PoolOption {
	return func(bp *BrowserPool) {
		bp.headless = headless
	}
}

// NewBrowserPool launches a headless Chrome browser and returns a pool over it.
// Close must be called when the pool is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewBrowserPool(opts ...PoolOption) (*BrowserPool, error) {
	bp := &BrowserPool{
		maxConcurrent: DefaultMaxConcurrent,
		maxPages:      DefaultMaxPages,
		headless:      true,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.maxConcurrent <= 0 {
		bp.maxConcurrent = DefaultMaxConcurrent
	}
	bp.sem = semaphore.NewWeighted(bp.maxConcurrent)

	if err := bp.launchBrowser(); err != nil {
		return nil, err
	}

	return bp, nil
}

// Acquire waits for a free slot and returns the browser to open a page on.
// The returned release func must be called exactly once when the page is
// closed; it is safe to defer immediately.
func (bp *BrowserPool) Acquire(ctx context.Context) (*rod.Browser, func(), error) {
	if bp.closed.Load() {
		return nil, nil, blogstat.Errorf(blogstat.EINVALID, "browser pool is closed")
	}
	if err := bp.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}

	bp.mu.Lock()
	if bp.closed.Load() || bp.browser == nil {
		bp.mu.Unlock()
		bp.sem.Release(1)
		return nil, nil, blogstat.Errorf(blogstat.EINVALID, "browser pool is closed")
	}
	if bp.pageCount >= bp.maxPages && bp.active == 0 {
		bp.recycleBrowser()
	}
	bp.active++
	browser := bp.browser
	bp.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			bp.mu.Lock()
			bp.active--
			bp.pageCount++
			bp.mu.Unlock()
			bp.sem.Release(1)
		})
	}
	return browser, release, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (bp *BrowserPool) Close() error {
	if !bp.closed.CompareAndSwap(false, true) {
		return nil
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()

	return bp.closeBrowser()
}

// launchBrowser starts a new browser instance with stability flags.
func (bp *BrowserPool) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("no-sandbox").
		Leakless(true).
		Headless(bp.headless)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bp.browser = browser
	bp.launcher = lnchr
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bp *BrowserPool) closeBrowser() error {
	var err error
	if bp.browser != nil {
		err = bp.browser.Close()
		bp.browser = nil
	}
	if bp.launcher != nil {
		bp.launcher.Kill()
		bp.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one.
// If launching the new browser fails, the old browser is kept.
// Must be called with mu held and no pages active.
func (bp *BrowserPool) recycleBrowser() {
	oldBrowser := bp.browser
	oldLauncher := bp.launcher
	bp.browser = nil
	bp.launcher = nil

	if err := bp.launchBrowser(); err != nil {
		bp.browser = oldBrowser
		bp.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	bp.pageCount = 0
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (bp *BrowserPool) LauncherPID() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.launcher == nil {
		return 0
	}
	return bp.launcher.PID()
}
