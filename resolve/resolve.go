// Package resolve turns batches of people into LinkedIn profile data by
// chaining a profile search service with a profile matching service.
package resolve

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fwojciec/blogstat"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var _ blogstat.ProfileResolver = (*Resolver)(nil)

// Resolver searches for each person's profile URL, then sends the URLs to a
// matcher in one batch. A failed search leaves an empty URL in that person's
// slot so the batch stays aligned with the request.
type Resolver struct {
	Searcher blogstat.ProfileSearcher
	Matcher  blogstat.ProfileMatcher

	// Limiter paces search calls. Nil means unlimited.
	Limiter *rate.Limiter

	// Concurrency bounds in-flight searches. Values below 1 mean 1.
	Concurrency int

	Logger *slog.Logger
}

// NewLimiter returns a limiter allowing rps search calls per second with no
// bursting. A non-positive rps returns nil.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// ResolveProfiles resolves every person in req and returns the matcher's
// response verbatim.
func (r *Resolver) ResolveProfiles(ctx context.Context, req *blogstat.BulkProfileRequest) (_ json.RawMessage, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := r.logger().With("request_id", uuid.NewString())
	people := req.People()
	logger.Info("bulk profile search started", "people", len(people))

	var urls []string
	defer func(begin time.Time) {
		logger.Info("bulk profile search finished",
			"found", countFound(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	urls, err = r.search(ctx, people, logger)
	if err != nil {
		return nil, err
	}

	return r.Matcher.MatchProfiles(ctx, urls)
}

func (r *Resolver) search(ctx context.Context, people []blogstat.Person, logger *slog.Logger) ([]string, error) {
	concurrency := r.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	urls := make([]string, len(people))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, person := range people {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if r.Limiter != nil {
				if err := r.Limiter.Wait(gctx); err != nil {
					return err
				}
			}

			query := person.Query()
			url, err := r.Searcher.SearchProfileURL(gctx, query)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("profile search failed", "query", query, "err", err)
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return urls, nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func countFound(urls []string) int {
	n := 0
	for _, u := range urls {
		if u != "" {
			n++
		}
	}
	return n
}
