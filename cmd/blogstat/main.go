package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/blogstat"
	"github.com/fwojciec/blogstat/goquery"
	bshttp "github.com/fwojciec/blogstat/http"
	"github.com/fwojciec/blogstat/resolve"
	"github.com/fwojciec/blogstat/rod"
	"github.com/fwojciec/blogstat/scrape"
	bsslog "github.com/fwojciec/blogstat/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Renderer overrides the browser or static renderer built from flags.
	// Set before calling Run(); used for end-to-end testing.
	Renderer blogstat.Renderer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("blogstat"),
		kong.Description("Measure blog posts and resolve LinkedIn profiles over HTTP"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'blogstat --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.LogFormat, cli.Verbose)

	renderer := m.Renderer
	if renderer == nil {
		renderer, err = cli.newRenderer()
		if err != nil {
			if !cli.Static {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --static")
			}
			return fmt.Errorf("failed to start renderer: %w", err)
		}
	}
	defer renderer.Close()

	var extractOpts []goquery.Option
	if cli.StrictHeadings {
		extractOpts = append(extractOpts, goquery.WithStrictHeadings())
	}

	deps.Stats = &scrape.Service{
		Renderer:  bsslog.NewLoggingRenderer(renderer, deps.Logger),
		Extractor: bsslog.NewLoggingExtractor(goquery.NewExtractor(extractOpts...), deps.Logger),
	}

	if kongCtx.Command() == "serve" && cli.Serve.SearchURL != "" && cli.Serve.MatcherURL != "" {
		deps.Profiles = &resolve.Resolver{
			Searcher: bsslog.NewLoggingProfileSearcher(
				bshttp.NewProfileSearchClient(cli.Serve.SearchURL, nil), deps.Logger),
			Matcher: bsslog.NewLoggingProfileMatcher(
				bshttp.NewProfileMatchClient(cli.Serve.MatcherURL, nil), deps.Logger),
			Limiter:     resolve.NewLimiter(cli.Serve.SearchRPS),
			Concurrency: cli.Serve.SearchConcurrency,
			Logger:      deps.Logger,
		}
	}

	return kongCtx.Run(deps)
}

// newRenderer builds the renderer selected by the rendering flags.
func (c *CLI) newRenderer() (blogstat.Renderer, error) {
	if c.Static {
		return bshttp.NewFetcher(bshttp.WithTimeout(c.RenderTimeout)), nil
	}

	pool, err := rod.NewBrowserPool(
		rod.WithMaxConcurrent(c.MaxBrowsers),
		rod.WithMaxPages(c.RecycleAfter),
	)
	if err != nil {
		return nil, err
	}

	return rod.NewRenderer(pool,
		rod.WithScrollPause(c.ScrollPause),
		rod.WithMaxScrolls(c.MaxScrolls),
		rod.WithRenderTimeout(c.RenderTimeout),
	), nil
}

func newLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
