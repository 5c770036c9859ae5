package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/blogstat"
)

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	URL    string `arg:"" help:"Blog post URL"`
	Indent bool   `default:"true" negatable:"" help:"Indent the JSON output"`
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	result, err := deps.Stats.BlogStats(deps.Ctx, c.URL)
	if err != nil {
		if blogstat.ErrorCode(err) == blogstat.EINTERNAL {
			return fmt.Errorf("failed to measure %s: %w", c.URL, err)
		}
		return fmt.Errorf("%s: %s", blogstat.ErrorCode(err), blogstat.ErrorMessage(err))
	}

	enc := json.NewEncoder(deps.Stdout)
	if c.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
