package lxtax

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// contains the parser for the tax CSV files the exchange publishes, used
// only to recover the settlement prices they embed.

// PriceRef is a settlement price observed at a given instant, recovered
// from an exchange tax CSV line.
type PriceRef struct {
	At    time.Time
	Price Price
}

// parseTaxLine extracts the price references from one line of an
// exchange tax CSV. Option lines carry no usable price and yield nil.
//
// Spot BTC lines yield two references, one per date column. The exchange
// swaps the basis and proceeds columns relative to their dates on long
// closes, so rather than guess the direction, each date is paired with
// the column that empirically matches market prices: the acquired date
// (field 2) with the basis (field 5), and the disposed date (field 3)
// with the proceeds (field 4).
func parseTaxLine(line string) ([]PriceRef, error) {
	r := csv.NewReader(strings.NewReader(line))
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("unreadable tax CSV line %q: %w", line, err)
	}
	if len(fields) != 11 {
		return nil, fmt.Errorf("tax CSV line %q has %d fields, want 11", line, len(fields))
	}

	// The description is either "<qty>, BTC" for spot or an option name.
	desc := fields[1]
	qtyStr, asset, found := strings.Cut(desc, ", ")
	if !found || asset != "BTC" {
		return nil, nil
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return nil, fmt.Errorf("tax CSV line %q: bad quantity %q: %w", line, qtyStr, err)
	}
	if qty.IsZero() {
		return nil, fmt.Errorf("tax CSV line %q: zero quantity", line)
	}

	refs := make([]PriceRef, 0, 2)
	for _, col := range []struct{ date, amount int }{{2, 5}, {3, 4}} {
		at, err := time.Parse(time.RFC3339, fields[col.date])
		if err != nil {
			return nil, fmt.Errorf("tax CSV line %q: bad date %q: %w", line, fields[col.date], err)
		}
		amount, err := decimal.NewFromString(stripMoney(fields[col.amount]))
		if err != nil {
			return nil, fmt.Errorf("tax CSV line %q: bad amount %q: %w", line, fields[col.amount], err)
		}
		refs = append(refs, PriceRef{At: at, Price: NewPrice(amount.Div(qty))})
	}
	return refs, nil
}

// forEachTaxLine visits the data lines of a full exchange tax CSV.
// The header line and blank lines are skipped.
func forEachTaxLine(r io.Reader, visit func(line string) error) error {
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}
		if err := visit(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
