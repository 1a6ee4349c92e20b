package lxtax

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Historic is a thinned-out market price history, used as a fallback
// when no settlement price reference covers an instant. Entries are kept
// at most one per half hour; finer resolution buys nothing for tax
// purposes and bloats memory on multi-year dumps.
type Historic struct {
	prices TimeMap[Price]
}

// Len reports the number of retained price points.
func (h *Historic) Len() int { return h.prices.Len() }

// Record adds a price point, unless one is already retained in the same
// half hour before it.
func (h *Historic) Record(at time.Time, price Price) {
	if entry, ok := h.prices.MostRecent(at.Add(time.Nanosecond)); ok {
		if at.Sub(entry.Time) < 30*time.Minute {
			return
		}
	}
	h.prices.Insert(at, price)
}

// PriceAt returns the last price recorded at or before the given
// instant. Asking for a price before the first record is a logic bug
// and panics: the caller is expected to load a history that covers the
// whole tax year.
func (h *Historic) PriceAt(at time.Time) Price {
	entry, ok := h.prices.MostRecent(at.Add(time.Nanosecond))
	if !ok {
		panic(fmt.Sprintf("no market price on record at or before %s", at))
	}
	return entry.Value
}

// ReadHistoricCSV loads a "timestamp,price,volume" market data dump,
// such as the bitcoincharts exports. The timestamp is a unix epoch in
// seconds; the volume column is ignored. Lines must already be in
// chronological order.
func ReadHistoricCSV(r io.Reader) (*Historic, error) {
	h := new(Historic)
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, ",", 3)
		if len(fields) < 2 {
			return nil, fmt.Errorf("market CSV line %d %q: want timestamp,price,volume", n, line)
		}
		epoch, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("market CSV line %d: bad timestamp: %w", n, err)
		}
		p, err := ParsePrice(fields[1])
		if err != nil {
			return nil, fmt.Errorf("market CSV line %d: %w", n, err)
		}
		h.Record(time.Unix(epoch, 0).UTC(), p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return h, nil
}
