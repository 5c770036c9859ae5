package blogstat

import "context"

// Renderer retrieves the fully loaded HTML of a page.
// Implementations may use browser automation to run JavaScript and trigger
// lazily loaded content.
type Renderer interface {
	// Render navigates to the URL, waits until the page stops growing,
	// and returns the rendered HTML.
	// The context controls timeout and cancellation.
	// Returns ETIMEOUT if the page keeps growing past the scroll limit.
	Render(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Renderer is no longer needed.
	Close() error
}

// BlogStatsService measures blog posts.
type BlogStatsService interface {
	// BlogStats renders the page at url and extracts its statistics.
	BlogStats(ctx context.Context, url string) (*ExtractionResult, error)
}
