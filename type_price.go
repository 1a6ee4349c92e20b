package lxtax

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Price is a signed fixed-point US dollar value per unit of some asset.
// All price arithmetic stays in decimals; floats only appear in the
// unitless ratio of two prices.
type Price struct {
	dec decimal.Decimal
}

// P builds a price from a decimal literal string, panicking on garbage.
// Only for constants and tests.
func P(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPrice wraps a decimal dollar value as a Price.
func NewPrice(d decimal.Decimal) Price { return Price{dec: d} }

// PriceFromCents builds a price from an integer number of cents, the scale
// the LX API and the lot database use.
func PriceFromCents(n int64) Price { return Price{dec: decimal.New(n, -2)} }

// ParsePrice parses a plain decimal dollar value, e.g. "123.45".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parsing price %q: %w", s, err)
	}
	return Price{dec: d}, nil
}

// Dec returns the underlying decimal dollar value.
func (p Price) Dec() decimal.Decimal { return p.dec }

// Cents returns the price as an integer number of cents, rounding half
// away from zero.
func (p Price) Cents() int64 { return p.dec.Shift(2).Round(0).IntPart() }

func (p Price) IsZero() bool             { return p.dec.IsZero() }
func (p Price) Add(q Price) Price        { return Price{dec: p.dec.Add(q.dec)} }
func (p Price) Sub(q Price) Price        { return Price{dec: p.dec.Sub(q.dec)} }
func (p Price) Neg() Price               { return Price{dec: p.dec.Neg()} }
func (p Price) Equal(q Price) bool       { return p.dec.Equal(q.dec) }
func (p Price) LessThan(q Price) bool    { return p.dec.LessThan(q.dec) }
func (p Price) GreaterThan(q Price) bool { return p.dec.GreaterThan(q.dec) }

// Mul scales a unit price by a quantity, producing the total dollar value
// of that many units. Contracts count 1/100 BTC each, so both bitcoin and
// contract quantities end up in the asset's natural tax scale.
func (p Price) Mul(q Quantity) Price {
	return Price{dec: p.dec.Mul(taxUnits(q))}
}

// Div derives a unit price from a total dollar value. Dividing by a zero
// quantity is a logic bug and panics.
func (p Price) Div(q Quantity) Price {
	if q.IsZero() {
		panic(fmt.Sprintf("dividing price %s by zero quantity", p))
	}
	return Price{dec: p.dec.Div(taxUnits(q))}
}

// Ratio returns p/q as a unitless float. Dividing by a zero price is a
// logic bug and panics.
func (p Price) Ratio(q Price) float64 {
	if q.IsZero() {
		panic(fmt.Sprintf("dividing price %s by zero price", p))
	}
	return p.dec.Div(q.dec).InexactFloat64()
}

// taxUnits converts a quantity to the scale the LX tax CSVs use: whole
// bitcoins for satoshi counts and hundredths (bitcoin equivalents) for
// contract counts.
func taxUnits(q Quantity) decimal.Decimal {
	switch q.Unit() {
	case UnitBitcoin:
		return decimal.New(q.Int(), -8)
	case UnitContracts:
		return decimal.New(q.Int(), -2)
	case UnitCents:
		return decimal.New(q.Int(), -2)
	default:
		return decimal.Zero
	}
}

// String renders the price with exactly two decimals, rounding half away
// from zero like the LX reports do.
func (p Price) String() string { return p.dec.StringFixed(2) }

// Display renders the price for humans with a currency symbol and
// thousands grouping, e.g. "$34,567.09".
func (p Price) Display() string {
	cents := p.dec.Shift(2).Round(0)
	return money.New(cents.IntPart(), money.USD).Display()
}

// stripMoney removes the quoting, currency symbols and thousands grouping
// that LX sprinkles over dollar fields in its CSV files.
func stripMoney(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '$', ',':
			return -1
		}
		return r
	}, s)
}
