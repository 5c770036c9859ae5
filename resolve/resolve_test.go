package resolve_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/blogstat"
	"github.com/fwojciec/blogstat/mock"
	"github.com/fwojciec/blogstat/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bulkRequest() *blogstat.BulkProfileRequest {
	return &blogstat.BulkProfileRequest{
		Names:       []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"},
		Designation: []string{"Engineer", "Researcher", "Admiral"},
		Location:    []string{"London", "Manchester", "Arlington"},
	}
}

func echoMatcher(got *[]string) *mock.ProfileMatcher {
	return &mock.ProfileMatcher{
		MatchProfilesFn: func(ctx context.Context, urls []string) (json.RawMessage, error) {
			*got = urls
			return json.RawMessage(`{"ok":true}`), nil
		},
	}
}

func TestResolver_ResolveProfiles(t *testing.T) {
	t.Parallel()

	t.Run("searches every person and matches the urls in order", func(t *testing.T) {
		t.Parallel()

		var queries []string
		var matched []string
		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					queries = append(queries, query)
					return "https://linkedin.com/in/" + query, nil
				},
			},
			Matcher: echoMatcher(&matched),
		}

		resp, err := r.ResolveProfiles(context.Background(), bulkRequest())

		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(resp))
		assert.Equal(t, []string{
			"Ada+Lovelace+Engineer+London",
			"Alan+Turing+Researcher+Manchester",
			"Grace+Hopper+Admiral+Arlington",
		}, queries)
		assert.Equal(t, []string{
			"https://linkedin.com/in/Ada+Lovelace+Engineer+London",
			"https://linkedin.com/in/Alan+Turing+Researcher+Manchester",
			"https://linkedin.com/in/Grace+Hopper+Admiral+Arlington",
		}, matched)
	})

	t.Run("keeps input order with concurrent searches", func(t *testing.T) {
		t.Parallel()

		delays := map[string]time.Duration{
			"Ada+Lovelace+Engineer+London":      30 * time.Millisecond,
			"Alan+Turing+Researcher+Manchester": 0,
			"Grace+Hopper+Admiral+Arlington":    15 * time.Millisecond,
		}
		var matched []string
		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					time.Sleep(delays[query])
					return query, nil
				},
			},
			Matcher:     echoMatcher(&matched),
			Concurrency: 3,
		}

		_, err := r.ResolveProfiles(context.Background(), bulkRequest())

		require.NoError(t, err)
		assert.Equal(t, []string{
			"Ada+Lovelace+Engineer+London",
			"Alan+Turing+Researcher+Manchester",
			"Grace+Hopper+Admiral+Arlington",
		}, matched)
	})

	t.Run("bounds concurrent searches", func(t *testing.T) {
		t.Parallel()

		var active, peak atomic.Int32
		var matched []string
		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					n := active.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
					active.Add(-1)
					return query, nil
				},
			},
			Matcher:     echoMatcher(&matched),
			Concurrency: 2,
		}

		_, err := r.ResolveProfiles(context.Background(), bulkRequest())

		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("stores empty url and logs failed searches", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var mu sync.Mutex
		var matched []string
		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					if query == "Alan+Turing+Researcher+Manchester" {
						return "", blogstat.Errorf(blogstat.EUPSTREAM, "search returned HTTP 500")
					}
					return "url:" + query, nil
				},
			},
			Matcher: &mock.ProfileMatcher{
				MatchProfilesFn: func(ctx context.Context, urls []string) (json.RawMessage, error) {
					mu.Lock()
					defer mu.Unlock()
					matched = urls
					return json.RawMessage(`[]`), nil
				},
			},
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		}

		_, err := r.ResolveProfiles(context.Background(), bulkRequest())

		require.NoError(t, err)
		assert.Equal(t, []string{
			"url:Ada+Lovelace+Engineer+London",
			"",
			"url:Grace+Hopper+Admiral+Arlington",
		}, matched)
		output := buf.String()
		assert.Contains(t, output, "profile search failed")
		assert.Contains(t, output, "query=Alan+Turing+Researcher+Manchester")
		assert.Contains(t, output, "search returned HTTP 500")
	})

	t.Run("logs request id at start and finish", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var matched []string
		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					return "u", nil
				},
			},
			Matcher: echoMatcher(&matched),
			Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
		}

		_, err := r.ResolveProfiles(context.Background(), bulkRequest())

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "bulk profile search started")
		assert.Contains(t, output, "people=3")
		assert.Contains(t, output, "bulk profile search finished")
		assert.Contains(t, output, "found=3")
		assert.Contains(t, output, "duration=")
		assert.Contains(t, output, "request_id=")
	})

	t.Run("rejects misaligned lists without searching", func(t *testing.T) {
		t.Parallel()

		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					t.Fatal("searcher should not be called")
					return "", nil
				},
			},
		}

		_, err := r.ResolveProfiles(context.Background(), &blogstat.BulkProfileRequest{
			Names:       []string{"a", "b"},
			Designation: []string{"x"},
			Location:    []string{"y", "z"},
		})

		assert.Equal(t, blogstat.EINVALID, blogstat.ErrorCode(err))
	})

	t.Run("returns matcher errors", func(t *testing.T) {
		t.Parallel()

		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					return "u", nil
				},
			},
			Matcher: &mock.ProfileMatcher{
				MatchProfilesFn: func(ctx context.Context, urls []string) (json.RawMessage, error) {
					return nil, blogstat.Errorf(blogstat.EUPSTREAM, "matcher returned HTTP 502")
				},
			},
		}

		_, err := r.ResolveProfiles(context.Background(), bulkRequest())

		assert.Equal(t, blogstat.EUPSTREAM, blogstat.ErrorCode(err))
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					cancel()
					return "", ctx.Err()
				},
			},
			Matcher: &mock.ProfileMatcher{
				MatchProfilesFn: func(ctx context.Context, urls []string) (json.RawMessage, error) {
					t.Fatal("matcher should not be called")
					return nil, nil
				},
			},
		}

		_, err := r.ResolveProfiles(ctx, bulkRequest())

		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("paces searches with the limiter", func(t *testing.T) {
		t.Parallel()

		var matched []string
		r := &resolve.Resolver{
			Searcher: &mock.ProfileSearcher{
				SearchProfileURLFn: func(ctx context.Context, query string) (string, error) {
					return "u", nil
				},
			},
			Matcher:     echoMatcher(&matched),
			Limiter:     resolve.NewLimiter(20), // 50ms between searches
			Concurrency: 3,
		}

		start := time.Now()
		_, err := r.ResolveProfiles(context.Background(), bulkRequest())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "three searches need two waits")
	})
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	assert.Nil(t, resolve.NewLimiter(0))
	require.NotNil(t, resolve.NewLimiter(5))
	assert.InDelta(t, 5.0, float64(resolve.NewLimiter(5).Limit()), 0.001)
}
