package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/blogstat"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Stats    blogstat.BlogStatsService
	Profiles blogstat.ProfileResolver
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogFormat string `name:"log-format" enum:"text,json" default:"text" env:"BLOGSTAT_LOG_FORMAT" help:"Log output format (text or json)"`
	Verbose   bool   `short:"v" help:"Log debug output"`

	ScrollPause    time.Duration `name:"scroll-pause" default:"2s" help:"Wait after each scroll for new content"`
	MaxScrolls     int           `name:"max-scrolls" default:"50" help:"Give up on pages still growing after this many scrolls"`
	RenderTimeout  time.Duration `name:"render-timeout" default:"60s" help:"Hard deadline for rendering one page"`
	MaxBrowsers    int64         `name:"max-browsers" default:"3" help:"Pages rendered at once"`
	RecycleAfter   int64         `name:"recycle-after" default:"75" help:"Restart the browser after this many pages"`
	Static         bool          `help:"Fetch pages over plain HTTP without running JavaScript"`
	StrictHeadings bool          `name:"strict-headings" help:"Reject pages whose h3/h4 headings appear before any h1/h2"`

	Serve ServeCmd `cmd:"" help:"Run the HTTP API server"`
	Stats StatsCmd `cmd:"" help:"Print word count and heading outline for a single URL"`
}
