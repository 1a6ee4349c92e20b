package lxtax

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// contains the renderers for the reconciliation outcome: the
// audit-parity tax CSVs, the lot log, and the summary.

// taxCSVNote is the note the exchange puts in the last header column.
const taxCSVNote = "Note that column C and column F reflect * where cost basis could not be obtained."

// taxCSVHeader returns the exact header row of the exchange's tax CSV,
// optionally with the extra lot ID column of the annotated variant.
func taxCSVHeader(annotated bool) []string {
	header := []string{
		"Reference", "Description", "Date Acquired", "Date Sold or Disposed of",
		"Proceeds", "Cost or other basis", "Gain/(Loss)", "Short-term/Long-term",
		"", "", taxCSVNote,
	}
	if annotated {
		header = append(header, "Lot ID")
	}
	return header
}

// closeDescription renders the quantity+asset column. Bitcoin amounts
// reduce to two decimals when exact, which is the common case since the
// exchange trades in hundredths, and match its output byte for byte.
func closeDescription(label Label, qty Quantity) string {
	if label.IsBTC() {
		amount := decimal.New(qty.Abs().Int(), -8)
		if amount.Equal(amount.Round(2)) {
			return fmt.Sprintf("%s, %s", amount.StringFixed(2), label)
		}
		return fmt.Sprintf("%s, %s", amount.StringFixed(8), label)
	}
	return fmt.Sprintf("%d, %s", qty.Abs().Int(), label)
}

// closeRow renders one data row. The proceeds column always carries the
// sale side and the basis column the buy side, so for closed shorts the
// acquired date is the buy-back date and the dollar figures come from
// the opposite legs than they do for longs.
func closeRow(label Label, cl *Close, annotated bool) []string {
	qty := cl.Quantity.Abs()
	openAmount := cl.OpenPrice.Mul(qty)
	closeAmount := cl.ClosePrice.Mul(qty)

	acquired, sold := cl.CloseDate, cl.OpenDate
	proceeds, basis := openAmount, closeAmount
	if cl.openLong {
		acquired, sold = cl.OpenDate, cl.CloseDate
		proceeds, basis = closeAmount, openAmount
	}

	row := []string{
		cl.Type.String(),
		closeDescription(label, qty),
		acquired.String(),
		sold.String(),
		proceeds.String(),
		basis.String(),
		proceeds.Sub(basis).String(),
		cl.Gain.String(),
		"", "", "",
	}
	if annotated {
		row = append(row, string(cl.OpenID))
	}
	return row
}

// WriteCSV renders the closes of the report's tax year.
func (r *TaxReport) WriteCSV(w io.Writer, annotated bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taxCSVHeader(annotated)); err != nil {
		return err
	}
	for _, ev := range r.Events {
		if ev.Close == nil || ev.Date.Year() != r.Year {
			continue
		}
		if err := cw.Write(closeRow(ev.Label, ev.Close, annotated)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLotLog dumps every open and close of the tax year with its lot
// ID, for auditing how the matcher paired things up.
func (r *TaxReport) WriteLotLog(w io.Writer) error {
	for _, ev := range r.Events {
		if ev.Date.Year() != r.Year {
			continue
		}
		date := ev.Date.Format("2006-01-02 15:04:05Z")
		var err error
		switch {
		case ev.Open != nil:
			_, err = fmt.Fprintf(w, "%-35s: %s:  open lot %s\n", ev.Label, date, ev.Open)
		case ev.Close != nil:
			_, err = fmt.Fprintf(w, "%-35s: %s: close lot %s\n", ev.Label, date, ev.Close)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Filenames of the two report variants inside the output directory.
func reportNames(year int) []string {
	return []string{
		fmt.Sprintf("taxes-%d.csv", year),
		fmt.Sprintf("taxes-%d-annotated.csv", year),
	}
}

// CheckReportCollision fails if dir already holds either report file
// for the year. Callers run it before reconciling, so that an existing
// filing stops the run before any work is done.
func CheckReportCollision(dir string, year int) error {
	for _, name := range reportNames(year) {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return fmt.Errorf("refusing to overwrite existing report %s", filepath.Join(dir, name))
		}
	}
	return nil
}

// WriteFiles writes both CSV variants into dir. Output is all or
// nothing: if either file already exists nothing is written, since a
// half-regenerated pair of filings is worse than none.
func (r *TaxReport) WriteFiles(dir string) error {
	if err := CheckReportCollision(dir, r.Year); err != nil {
		return err
	}
	for i, name := range reportNames(r.Year) {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		err = r.WriteCSV(f, i == 1)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// Markdown renders a per-character summary of the year's closes, for
// display through a terminal markdown renderer.
func (r *TaxReport) Markdown() string {
	type total struct {
		closes   int
		proceeds decimal.Decimal
		basis    decimal.Decimal
	}
	totals := make(map[GainType]*total)
	for _, ev := range r.Events {
		if ev.Close == nil || ev.Date.Year() != r.Year {
			continue
		}
		cl := ev.Close
		t := totals[cl.Gain]
		if t == nil {
			t = new(total)
			totals[cl.Gain] = t
		}
		qty := cl.Quantity.Abs()
		proceeds, basis := cl.OpenPrice.Mul(qty), cl.ClosePrice.Mul(qty)
		if cl.openLong {
			proceeds, basis = basis, proceeds
		}
		t.closes++
		t.proceeds = t.proceeds.Add(proceeds.Dec())
		t.basis = t.basis.Add(basis.Dec())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Tax year %d\n\n", r.Year)
	fmt.Fprintf(&b, "| Character | Closes | Proceeds | Basis | Gain/(Loss) |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, gain := range []GainType{GainShortTerm, GainLongTerm, Gain1256} {
		t := totals[gain]
		if t == nil {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n",
			gain, t.closes,
			NewPrice(t.proceeds).Display(),
			NewPrice(t.basis).Display(),
			NewPrice(t.proceeds.Sub(t.basis)).Display())
	}
	return b.String()
}

// WriteHistoryCSV dumps the raw event history for the given year (or
// every year when year is zero) in a spreadsheet-friendly shape, with a
// market price column, and for options their intrinsic value and
// annualized return at fill time.
func WriteHistoryCSV(w io.Writer, history *History, year int, historic *Historic) error {
	for at, event := range history.Events() {
		if year != 0 && at.UTC().Year() != year {
			continue
		}
		date := at.UTC().Format("2006-01-02T15:04:05.000000000Z")
		btc := historic.PriceAt(at)

		var err error
		switch ev := event.(type) {
		case DepositEvent:
			_, err = fmt.Fprintf(w, "Deposit,%s,,%s,,%s,%s\n", date, ev.Asset, ev.Amount, btc)
		case WithdrawalEvent:
			_, err = fmt.Fprintf(w, "Withdraw,%s,,%s,,%s,%s\n", date, ev.Asset, ev.Amount, btc)
		case TradeEvent:
			switch ev.Contract.Kind {
			case KindOption:
				opt, _ := ev.Contract.AsOption()
				arr := ""
				if at.Before(opt.Expiry) {
					if x := opt.ARR(at, btc, ev.Price); x < 100 {
						arr = strconv.FormatFloat(x, 'g', -1, 64)
					}
				}
				_, err = fmt.Fprintf(w, "Trade,%s,%s,%c,%s,%s,%d,%s,%s,%s\n",
					date, opt.Expiry.Format("2006-01-02"), opt.PC.Char(), opt.Strike,
					ev.Price, ev.Size, btc, opt.IntrinsicValue(btc), arr)
			case KindNextDay:
				_, err = fmt.Fprintf(w, "Trade,%s,,%s,,%s,%d,%s\n",
					date, ev.Contract.Underlying, ev.Price, ev.Size, btc)
			default:
				return fmt.Errorf("cannot report trade in contract %s (%s)", ev.Contract.ID, ev.Contract.WireLabel)
			}
		case ExpiryEvent:
			opt, ok := ev.Contract.AsOption()
			if !ok {
				continue // next-day deliveries are reported as their trades
			}
			if ev.Expired != 0 {
				_, err = fmt.Fprintf(w, "Expiry,%s,%s,%c,%s,,%d,\n",
					date, opt.Expiry.Format("2006-01-02"), opt.PC.Char(), opt.Strike, ev.Expired)
			}
			if err == nil && ev.Assigned != 0 {
				_, err = fmt.Fprintf(w, "Assignment,%s,%s,%c,%s,,%d,\n",
					date, opt.Expiry.Format("2006-01-02"), opt.PC.Char(), opt.Strike, ev.Assigned)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
