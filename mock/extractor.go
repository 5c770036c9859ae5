package mock

import "github.com/fwojciec/blogstat"

var _ blogstat.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of blogstat.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*blogstat.ExtractionResult, error)
}

func (e *Extractor) Extract(html string) (*blogstat.ExtractionResult, error) {
	return e.ExtractFn(html)
}
