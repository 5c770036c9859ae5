// Package scrape measures blog posts by rendering them and extracting their
// main content.
package scrape

import (
	"context"

	"github.com/fwojciec/blogstat"
)

var _ blogstat.BlogStatsService = (*Service)(nil)

// Service renders a page and hands the result to an Extractor.
type Service struct {
	Renderer  blogstat.Renderer
	Extractor blogstat.Extractor
}

// BlogStats renders the page at url and extracts its word count and outline.
// Renderer and extractor errors are returned unchanged so their codes reach
// the caller.
func (s *Service) BlogStats(ctx context.Context, url string) (*blogstat.ExtractionResult, error) {
	html, err := s.Renderer.Render(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.Extractor.Extract(html)
}
