// Package cmd implements the CLI application driving tax reconciliation.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/avw/lxtax"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&taxCsvCmd{}, "reports")
	c.Register(&historyCsvCmd{}, "reports")

	c.Register(&recordTxCmd{}, "databases")
	c.Register(&recordLotCmd{}, "databases")
	c.Register(&recordCsvCmd{}, "databases")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "lxtax.json", "Path to the configuration file")

// LoadConfig loads the app configuration file.
func LoadConfig() (*lxtax.Configuration, error) {
	return lxtax.LoadConfiguration(*configFile)
}

// SaveConfig writes the configuration back to the app configuration file.
func SaveConfig(c *lxtax.Configuration) error {
	return c.Save(*configFile)
}

// FetchHistory pulls the full account history using the configured API
// key.
func FetchHistory(c *lxtax.Configuration) (*lxtax.History, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("configuration has no api_key")
	}
	return lxtax.NewClient(c.APIKey).FetchHistory()
}

// fail prints an error and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}
