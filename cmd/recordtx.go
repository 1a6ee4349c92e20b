package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// recordTxCmd holds the flags for the 'record-tx' subcommand.
type recordTxCmd struct{}

func (*recordTxCmd) Name() string     { return "record-tx" }
func (*recordTxCmd) Synopsis() string { return "record a raw deposit transaction" }
func (*recordTxCmd) Usage() string {
	return `lxt record-tx <txid> <raw-hex>

  Adds a raw bitcoin transaction to the transaction database, after
  checking that the hex decodes and actually hashes to the given txid.
  Record the transaction funding each deposit, and the transactions
  funding its inputs, so that deposits resolve to per-UTXO lots.
`
}

func (*recordTxCmd) SetFlags(*flag.FlagSet) {}

func (c *recordTxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return fail(fmt.Errorf("want exactly a txid and a raw transaction hex, got %d arguments", f.NArg()))
	}
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	if err := cfg.RecordTransaction(f.Arg(0), f.Arg(1)); err != nil {
		return fail(err)
	}
	if err := SaveConfig(cfg); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded transaction %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
