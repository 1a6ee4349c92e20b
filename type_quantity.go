package lxtax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit tags a Quantity with what is actually being counted.
type Unit int

const (
	// UnitZero is the unit of the polymorphic zero quantity.
	UnitZero Unit = iota
	// UnitBitcoin counts satoshis.
	UnitBitcoin
	// UnitContracts counts option/swap contracts (1 contract = 0.01 BTC).
	UnitContracts
	// UnitCents counts US dollar cents.
	UnitCents
)

func (u Unit) String() string {
	switch u {
	case UnitZero:
		return "zero"
	case UnitBitcoin:
		return "BTC"
	case UnitContracts:
		return "contracts"
	case UnitCents:
		return "USD"
	default:
		return "unknown"
	}
}

// Quantity is a signed scalar tagged with a unit. Arithmetic between two
// non-zero quantities of different units is a logic bug and panics; the
// zero quantity is a unit-polymorphic identity.
type Quantity struct {
	unit Unit
	n    int64
}

// Zero is the unit-polymorphic zero quantity.
var Zero = Quantity{}

// Sats returns a bitcoin quantity counted in satoshis.
func Sats(n int64) Quantity { return Quantity{unit: UnitBitcoin, n: n} }

// Contracts returns a contract-count quantity.
func Contracts(n int64) Quantity { return Quantity{unit: UnitContracts, n: n} }

// Cents returns a US dollar quantity counted in cents.
func Cents(n int64) Quantity { return Quantity{unit: UnitCents, n: n} }

// Unit returns the unit tag of the quantity.
func (q Quantity) Unit() Unit { return q.unit }

// Int returns the raw signed count (satoshis, contracts or cents).
func (q Quantity) Int() int64 { return q.n }

func (q Quantity) IsZero() bool     { return q.n == 0 }
func (q Quantity) IsNegative() bool { return q.n < 0 }
func (q Quantity) IsPositive() bool { return q.n > 0 }

// Neg returns the quantity with its sign flipped.
func (q Quantity) Neg() Quantity { return Quantity{unit: q.unit, n: -q.n} }

// Abs returns the quantity with a nonnegative sign.
func (q Quantity) Abs() Quantity {
	if q.n < 0 {
		return q.Neg()
	}
	return q
}

// SameSign reports whether q and p point in the same direction.
// Zero matches either sign.
func (q Quantity) SameSign(p Quantity) bool {
	if q.n == 0 || p.n == 0 {
		return true
	}
	return (q.n > 0) == (p.n > 0)
}

// SameUnit reports whether q and p share a unit. Zero shares every unit.
func (q Quantity) SameUnit(p Quantity) bool {
	if q.unit == UnitZero || p.unit == UnitZero {
		return true
	}
	return q.unit == p.unit
}

// Add returns q + p. Panics on a unit mismatch: mixing units is always a
// bug in the caller, never recoverable input.
func (q Quantity) Add(p Quantity) Quantity {
	if q.unit == UnitZero {
		return p
	}
	if p.unit == UnitZero {
		return q
	}
	if q.unit != p.unit {
		panic(fmt.Sprintf("cannot add %s to %s", p, q))
	}
	return Quantity{unit: q.unit, n: q.n + p.n}
}

// Sub returns q - p with the same unit rules as Add.
func (q Quantity) Sub(p Quantity) Quantity { return q.Add(p.Neg()) }

// AbsGreaterThan reports whether |q| > |p|. Panics on a unit mismatch.
func (q Quantity) AbsGreaterThan(p Quantity) bool {
	if !q.SameUnit(p) {
		panic(fmt.Sprintf("cannot compare %s with %s", q, p))
	}
	return q.Abs().n > p.Abs().n
}

// Dec returns the quantity as a decimal in its natural display scale:
// whole bitcoins for satoshis, dollars for cents, a plain count for
// contracts.
func (q Quantity) Dec() decimal.Decimal {
	switch q.unit {
	case UnitBitcoin:
		return decimal.New(q.n, -8)
	case UnitCents:
		return decimal.New(q.n, -2)
	default:
		return decimal.NewFromInt(q.n)
	}
}

func (q Quantity) String() string {
	switch q.unit {
	case UnitZero:
		return "ZERO"
	case UnitBitcoin:
		return q.Dec().String() + " BTC"
	case UnitContracts:
		return fmt.Sprintf("%d contracts", q.n)
	case UnitCents:
		return "$" + q.Dec().StringFixed(2)
	default:
		return fmt.Sprintf("%d <unknown unit>", q.n)
	}
}

// UnknownQuantity is a signed count straight off the wire, before the asset
// (and therefore the unit) of the record is known. It cannot be used for
// arithmetic until SetAsset resolves it.
type UnknownQuantity struct {
	N int64
}

// SetAsset resolves the wire count into a unit-tagged Quantity.
func (u UnknownQuantity) SetAsset(a Asset) Quantity {
	switch a.Kind {
	case AssetBtc:
		return Sats(u.N)
	case AssetUsd:
		return Cents(u.N)
	case AssetOption, AssetNextDay, AssetFuture:
		return Contracts(u.N)
	case AssetEth:
		panic("ethereum quantities are not supported")
	default:
		panic(fmt.Sprintf("cannot interpret quantity of %v", a))
	}
}
