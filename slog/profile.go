package slog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fwojciec/blogstat"
)

var (
	_ blogstat.ProfileSearcher = (*LoggingProfileSearcher)(nil)
	_ blogstat.ProfileMatcher  = (*LoggingProfileMatcher)(nil)
)

// LoggingProfileSearcher wraps a ProfileSearcher with debug logging.
type LoggingProfileSearcher struct {
	next   blogstat.ProfileSearcher
	logger *slog.Logger
}

// NewLoggingProfileSearcher creates a new LoggingProfileSearcher.
func NewLoggingProfileSearcher(next blogstat.ProfileSearcher, logger *slog.Logger) *LoggingProfileSearcher {
	return &LoggingProfileSearcher{next: next, logger: logger}
}

// SearchProfileURL delegates to the wrapped searcher and logs the result.
func (s *LoggingProfileSearcher) SearchProfileURL(ctx context.Context, query string) (url string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("profile search",
			"query", query,
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SearchProfileURL(ctx, query)
}

// LoggingProfileMatcher wraps a ProfileMatcher with logging.
type LoggingProfileMatcher struct {
	next   blogstat.ProfileMatcher
	logger *slog.Logger
}

// NewLoggingProfileMatcher creates a new LoggingProfileMatcher.
func NewLoggingProfileMatcher(next blogstat.ProfileMatcher, logger *slog.Logger) *LoggingProfileMatcher {
	return &LoggingProfileMatcher{next: next, logger: logger}
}

// MatchProfiles delegates to the wrapped matcher and logs the batch size.
func (m *LoggingProfileMatcher) MatchProfiles(ctx context.Context, urls []string) (resp json.RawMessage, err error) {
	defer func(begin time.Time) {
		m.logger.Info("profile match",
			"urls", len(urls),
			"bytes", len(resp),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.MatchProfiles(ctx, urls)
}
