package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	bshttp "github.com/fwojciec/blogstat/http"
)

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr              string        `default:":8000" env:"BLOGSTAT_ADDR" help:"Address to listen on"`
	SearchURL         string        `name:"search-url" env:"BLOGSTAT_SEARCH_URL" help:"Base URL of the profile search service"`
	MatcherURL        string        `name:"matcher-url" env:"BLOGSTAT_MATCHER_URL" help:"Base URL of the profile matching service"`
	SearchRPS         float64       `name:"search-rps" default:"5" help:"Profile searches per second (0 for unlimited)"`
	SearchConcurrency int           `name:"search-concurrency" default:"1" help:"Profile searches in flight at once"`
	ShutdownTimeout   time.Duration `name:"shutdown-timeout" default:"10s" help:"Time allowed for in-flight requests on shutdown"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	if deps.Profiles == nil {
		deps.Logger.Warn("bulk profile search disabled; set --search-url and --matcher-url to enable it")
	}

	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.Addr, err)
	}

	handler := bshttp.NewServer(deps.Stats, deps.Profiles, deps.Logger)
	return Serve(deps.Ctx, ln, handler, deps.Logger, c.ShutdownTimeout)
}

// Serve serves handler on ln until ctx is done, then shuts down gracefully,
// giving in-flight requests up to timeout to finish.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger, timeout time.Duration) error {
	httpServer := &http.Server{
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting blogstat", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
