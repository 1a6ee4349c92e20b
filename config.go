package lxtax

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Configuration is the single JSON file driving a tax run. Besides the
// tax year and input file paths it embeds the two small databases the
// record-tx and record-lot commands maintain: raw deposit transactions
// and acquisition info for wallet coins.
type Configuration struct {
	// Year is the tax year being reconciled.
	Year int `json:"year"`
	// APIKey authenticates against the exchange API.
	APIKey string `json:"api_key,omitempty"`
	// LXCSV holds the data lines of the exchange-published tax CSVs,
	// one raw line per entry with the header dropped. They are mined
	// for settlement price references, and embedding them keeps a
	// year's filing reproducible from this one file.
	LXCSV []string `json:"lx_csv,omitempty"`
	// PriceHistory is an optional market data CSV used as a price
	// fallback when no reference covers an instant.
	PriceHistory string `json:"price_history,omitempty"`
	// Lots records the acquisition price and date of wallet coins,
	// keyed by outpoint-derived lot ID.
	Lots map[LotID]LotInfo `json:"lots,omitempty"`
	// Transactions maps txid to raw transaction hex for every
	// transaction funding a deposit.
	Transactions map[string]string `json:"transactions,omitempty"`
}

// LotInfo is the recorded acquisition of a wallet coin.
type LotInfo struct {
	Price Price
	Date  time.Time
}

// lotInfoJSON is the wire form: integer cents and unix seconds.
type lotInfoJSON struct {
	PriceCents int64 `json:"price"`
	DateUnix   int64 `json:"date"`
}

func (l LotInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(lotInfoJSON{PriceCents: l.Price.Cents(), DateUnix: l.Date.Unix()})
}

func (l *LotInfo) UnmarshalJSON(b []byte) error {
	var wire lotInfoJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	l.Price = PriceFromCents(wire.PriceCents)
	l.Date = time.Unix(wire.DateUnix, 0).UTC()
	return nil
}

// LoadConfiguration reads and decodes a configuration file.
func LoadConfiguration(path string) (*Configuration, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	c := new(Configuration)
	if err := json.Unmarshal(content, c); err != nil {
		return nil, fmt.Errorf("decoding configuration %s: %w", path, err)
	}
	if c.Year == 0 {
		return nil, fmt.Errorf("configuration %s: missing tax year", path)
	}
	return c, nil
}

// Save writes the configuration back, indented so the databases stay
// hand-editable.
func (c *Configuration) Save(path string) error {
	content, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}
	return nil
}

// RecordTransaction adds a raw transaction to the database, validating
// it the same way a tax run will.
func (c *Configuration) RecordTransaction(txid, raw string) error {
	if err := NewTxDB().Add(txid, raw); err != nil {
		return err
	}
	if c.Transactions == nil {
		c.Transactions = make(map[string]string)
	}
	c.Transactions[txid] = raw
	return nil
}

// RecordLot adds acquisition info for a wallet coin.
func (c *Configuration) RecordLot(id LotID, info LotInfo) {
	if c.Lots == nil {
		c.Lots = make(map[LotID]LotInfo)
	}
	c.Lots[id] = info
}

// TransactionDB decodes every recorded transaction into a TxDB.
func (c *Configuration) TransactionDB() (*TxDB, error) {
	db := NewTxDB()
	for txid, raw := range c.Transactions {
		if err := db.Add(txid, raw); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// PriceRefs parses every embedded exchange tax CSV line into one
// reference table.
func (c *Configuration) PriceRefs() ([]PriceRef, error) {
	var refs []PriceRef
	for i, line := range c.LXCSV {
		lineRefs, err := parseTaxLine(line)
		if err != nil {
			return nil, fmt.Errorf("lx_csv entry %d: %w", i, err)
		}
		refs = append(refs, lineRefs...)
	}
	return refs, nil
}

// RecordTaxCSV embeds the data lines of an exchange tax CSV in the
// configuration, checking that each one parses. It returns the number
// of lines recorded.
func (c *Configuration) RecordTaxCSV(r io.Reader) (int, error) {
	n := 0
	err := forEachTaxLine(r, func(line string) error {
		if _, err := parseTaxLine(line); err != nil {
			return err
		}
		c.LXCSV = append(c.LXCSV, line)
		n++
		return nil
	})
	return n, err
}

// Historic loads the configured market data CSV, or an empty store when
// none is configured.
func (c *Configuration) Historic() (*Historic, error) {
	if c.PriceHistory == "" {
		return new(Historic), nil
	}
	f, err := os.Open(c.PriceHistory)
	if err != nil {
		return nil, fmt.Errorf("opening price history: %w", err)
	}
	defer f.Close()
	h, err := ReadHistoricCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.PriceHistory, err)
	}
	return h, nil
}
