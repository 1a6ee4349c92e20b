package lxtax

import (
	"fmt"
	"time"
)

// The fixed settlement hours LX stamps on everything, regardless of when
// anything actually happened: trades and next-day settlements at 21:00 UTC,
// option exercises at 22:00 UTC.
const (
	settlementHour = 21
	exerciseHour   = 22
)

// TaxDate is a settlement timestamp as it appears in the tax CSVs.
type TaxDate struct {
	time.Time
}

// NewTaxDate wraps a timestamp, normalized to UTC.
func NewTaxDate(t time.Time) TaxDate { return TaxDate{t.UTC()} }

// String renders the date in seconds-precision RFC 3339. LX rounds to the
// nearest second rather than truncating, so we do too.
func (d TaxDate) String() string {
	t := d.UTC()
	if t.Nanosecond() > 500_000_000 {
		t = t.Add(time.Second)
	}
	return t.Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// forcedToHour returns the timestamp's UTC day at exactly the given hour.
func forcedToHour(t time.Time, hour int) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
}

// parseLXTime parses the timestamps found in LX history records, which come
// in at least two different spellings depending on the endpoint.
func parseLXTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05-0700",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not in any known LX format", s)
}
