package mock

import (
	"context"

	"github.com/fwojciec/blogstat"
)

var _ blogstat.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of blogstat.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (string, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	return r.RenderFn(ctx, url)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}

var _ blogstat.BlogStatsService = (*BlogStatsService)(nil)

// BlogStatsService is a mock implementation of blogstat.BlogStatsService.
type BlogStatsService struct {
	BlogStatsFn func(ctx context.Context, url string) (*blogstat.ExtractionResult, error)
}

func (s *BlogStatsService) BlogStats(ctx context.Context, url string) (*blogstat.ExtractionResult, error) {
	return s.BlogStatsFn(ctx, url)
}
