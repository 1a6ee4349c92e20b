package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/avw/lxtax"
)

// recordLotCmd holds the flags for the 'record-lot' subcommand.
type recordLotCmd struct{}

func (*recordLotCmd) Name() string     { return "record-lot" }
func (*recordLotCmd) Synopsis() string { return "record acquisition info for a wallet coin" }
func (*recordLotCmd) Usage() string {
	return `lxt record-lot <lot-id> <price> <date>

  Records the acquisition price (USD per BTC) and date of an on-chain
  lot, identified by its outpoint-derived ID as printed in warnings and
  the annotated report (e.g. "4a5e1e4b-00"). Dates are either
  "2006-01-02" or full RFC 3339.
`
}

func (*recordLotCmd) SetFlags(*flag.FlagSet) {}

func (c *recordLotCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		return fail(fmt.Errorf("want exactly a lot ID, a price and a date, got %d arguments", f.NArg()))
	}
	price, err := lxtax.ParsePrice(f.Arg(1))
	if err != nil {
		return fail(err)
	}
	date, err := time.Parse(time.RFC3339, f.Arg(2))
	if err != nil {
		date, err = time.Parse("2006-01-02", f.Arg(2))
	}
	if err != nil {
		return fail(fmt.Errorf("parsing date %q: %w", f.Arg(2), err))
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	cfg.RecordLot(lxtax.LotID(f.Arg(0)), lxtax.LotInfo{Price: price, Date: date.UTC()})
	if err := SaveConfig(cfg); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded lot %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
