package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/blogstat"
)

// Ensure LoggingExtractor implements blogstat.Extractor.
var _ blogstat.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging.
type LoggingExtractor struct {
	next   blogstat.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next blogstat.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs what it found.
func (e *LoggingExtractor) Extract(html string) (result *blogstat.ExtractionResult, err error) {
	defer func(begin time.Time) {
		var words, headings int
		if result != nil {
			words, headings = result.WordCount, len(result.Headings)
		}
		e.logger.Info("extract",
			"bytes", len(html),
			"words", words,
			"headings", headings,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
