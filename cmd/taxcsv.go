package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/avw/lxtax"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// taxCsvCmd holds the flags for the 'tax-csv' subcommand.
type taxCsvCmd struct {
	dir    string
	lotIDs bool
	quiet  bool
}

func (*taxCsvCmd) Name() string     { return "tax-csv" }
func (*taxCsvCmd) Synopsis() string { return "reconcile the tax year and write the filing CSVs" }
func (*taxCsvCmd) Usage() string {
	return `lxt tax-csv [-o <dir>] [-lot-ids] [-q]

  Fetches the account history, replays it through the position tracker for
  the configured tax year, and writes the exchange-format CSV plus the
  lot-annotated variant. Existing report files are never overwritten.
`
}

func (c *taxCsvCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "o", ".", "Directory to write the two report files into")
	f.BoolVar(&c.lotIDs, "lot-ids", false, "Print the open/close lot log to stdout instead of writing files")
	f.BoolVar(&c.quiet, "q", false, "Skip the rendered summary")
}

func (c *taxCsvCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	// Check the output directory before doing any work: an existing
	// filing must stop the run up front, not after reconciliation.
	if !c.lotIDs {
		if err := lxtax.CheckReportCollision(c.dir, cfg.Year); err != nil {
			return fail(err)
		}
	}
	report, err := reconcile(cfg)
	if err != nil {
		return fail(err)
	}

	if c.lotIDs {
		if err := report.WriteLotLog(os.Stdout); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	if err := report.WriteFiles(c.dir); err != nil {
		return fail(err)
	}
	if !c.quiet {
		out, err := glamour.Render(report.Markdown(), "auto")
		if err != nil {
			return fail(err)
		}
		fmt.Print(out)
	}
	return subcommands.ExitSuccess
}

// reconcile assembles every collaborator the driver needs from the
// configuration and runs it.
func reconcile(cfg *lxtax.Configuration) (*lxtax.TaxReport, error) {
	history, err := FetchHistory(cfg)
	if err != nil {
		return nil, err
	}
	txdb, err := cfg.TransactionDB()
	if err != nil {
		return nil, err
	}
	refs, err := cfg.PriceRefs()
	if err != nil {
		return nil, err
	}
	historic, err := cfg.Historic()
	if err != nil {
		return nil, err
	}
	prices, err := lxtax.NewPriceTable(refs, historic)
	if err != nil {
		return nil, err
	}
	return lxtax.Reconcile(history, cfg.Year, prices, txdb, cfg.Lots)
}
