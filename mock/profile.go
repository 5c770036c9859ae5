package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/blogstat"
)

var (
	_ blogstat.ProfileSearcher = (*ProfileSearcher)(nil)
	_ blogstat.ProfileMatcher  = (*ProfileMatcher)(nil)
	_ blogstat.ProfileResolver = (*ProfileResolver)(nil)
)

// ProfileSearcher is a mock implementation of blogstat.ProfileSearcher.
type ProfileSearcher struct {
	SearchProfileURLFn func(ctx context.Context, query string) (string, error)
}

func (s *ProfileSearcher) SearchProfileURL(ctx context.Context, query string) (string, error) {
	return s.SearchProfileURLFn(ctx, query)
}

// ProfileMatcher is a mock implementation of blogstat.ProfileMatcher.
type ProfileMatcher struct {
	MatchProfilesFn func(ctx context.Context, urls []string) (json.RawMessage, error)
}

func (m *ProfileMatcher) MatchProfiles(ctx context.Context, urls []string) (json.RawMessage, error) {
	return m.MatchProfilesFn(ctx, urls)
}

// ProfileResolver is a mock implementation of blogstat.ProfileResolver.
type ProfileResolver struct {
	ResolveProfilesFn func(ctx context.Context, req *blogstat.BulkProfileRequest) (json.RawMessage, error)
}

func (r *ProfileResolver) ResolveProfiles(ctx context.Context, req *blogstat.BulkProfileRequest) (json.RawMessage, error) {
	return r.ResolveProfilesFn(ctx, req)
}
