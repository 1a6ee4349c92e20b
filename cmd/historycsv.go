package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/avw/lxtax"
)

// historyCsvCmd holds the flags for the 'history-csv' subcommand.
type historyCsvCmd struct {
	year int
}

func (*historyCsvCmd) Name() string     { return "history-csv" }
func (*historyCsvCmd) Synopsis() string { return "dump the raw account history as CSV" }
func (*historyCsvCmd) Usage() string {
	return `lxt history-csv [-year <year>]

  Prints every deposit, withdrawal, trade and expiry in spreadsheet form,
  with the market BTC price alongside. Defaults to the configured tax
  year; -year 0 dumps everything.
`
}

func (c *historyCsvCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", -1, "Year to dump, 0 for all years")
}

func (c *historyCsvCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	if c.year < 0 {
		c.year = cfg.Year
	}
	history, err := FetchHistory(cfg)
	if err != nil {
		return fail(err)
	}
	historic, err := cfg.Historic()
	if err != nil {
		return fail(err)
	}
	if err := lxtax.WriteHistoryCSV(os.Stdout, history, c.year, historic); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
