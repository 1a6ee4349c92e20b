package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// recordCsvCmd holds the flags for the 'record-csv' subcommand.
type recordCsvCmd struct{}

func (*recordCsvCmd) Name() string     { return "record-csv" }
func (*recordCsvCmd) Synopsis() string { return "embed an exchange tax CSV in the configuration" }
func (*recordCsvCmd) Usage() string {
	return `lxt record-csv <file>

  Validates the exchange-provided tax CSV and copies its data lines into
  the configuration, where reconciliation mines them for settlement
  price references. The header line is dropped.
`
}

func (*recordCsvCmd) SetFlags(*flag.FlagSet) {}

func (c *recordCsvCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return fail(fmt.Errorf("want exactly a tax CSV file, got %d arguments", f.NArg()))
	}
	file, err := os.Open(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	defer file.Close()

	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	n, err := cfg.RecordTaxCSV(file)
	if err != nil {
		return fail(fmt.Errorf("parsing %s: %w", f.Arg(0), err))
	}
	if err := SaveConfig(cfg); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %d lines from %s\n", n, f.Arg(0))
	return subcommands.ExitSuccess
}
