package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/blogstat"
	"github.com/go-rod/rod"
)

// Scroller measures and scrolls a page.
type Scroller interface {
	// ScrollHeight returns document.documentElement.scrollHeight.
	ScrollHeight() (int, error)

	// ScrollToBottom scrolls the viewport to the current end of the document.
	ScrollToBottom() error
}

// ScrollUntilStable scrolls to the bottom and waits pause, repeatedly, until
// two consecutive scroll heights are equal. It returns the number of scrolls
// performed. If the height still changes after maxScrolls scrolls it returns
// ETIMEOUT rather than letting the caller use a partially loaded page.
func ScrollUntilStable(ctx context.Context, s Scroller, pause time.Duration, maxScrolls int) (int, error) {
	last, err := s.ScrollHeight()
	if err != nil {
		return 0, fmt.Errorf("measuring scroll height: %w", err)
	}

	for i := 1; i <= maxScrolls; i++ {
		if err := s.ScrollToBottom(); err != nil {
			return i, fmt.Errorf("scrolling: %w", err)
		}

		if err := sleep(ctx, pause); err != nil {
			return i, err
		}

		height, err := s.ScrollHeight()
		if err != nil {
			return i, fmt.Errorf("measuring scroll height: %w", err)
		}
		if height == last {
			return i, nil
		}
		last = height
	}

	return maxScrolls, blogstat.Errorf(blogstat.ETIMEOUT, "page still growing after %d scrolls", maxScrolls)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pageScroller drives a rod page through JavaScript evaluation.
type pageScroller struct {
	page *rod.Page
}

func (s pageScroller) ScrollHeight() (int, error) {
	res, err := s.page.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (s pageScroller) ScrollToBottom() error {
	_, err := s.page.Eval(`() => window.scrollTo(0, document.documentElement.scrollHeight)`)
	return err
}
