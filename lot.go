package lxtax

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/wire"
)

// LotID identifies an open lot. Lots born from on-chain deposits get a
// durable ID derived from their outpoint, so that records stay consistent
// from year to year; lots born from trades get a synthetic sequence ID
// minted by the position tracker the moment they open a position.
type LotID string

// OutpointLotID derives the durable ID of a deposit UTXO lot.
func OutpointLotID(op wire.OutPoint) LotID {
	return LotID(fmt.Sprintf("%.8s-%02d", op.Hash.String(), op.Index))
}

// depositSortSkew pushes deposit lots a century into the future so that
// the matcher consumes trade lots before wallet coins.
const depositSortSkew = 100 * 365 * 24 * time.Hour

// CloseType is the nature of a taxable "close position" event.
type CloseType int

const (
	CloseBuyBack CloseType = iota
	CloseSell
	CloseExpiry
	CloseExercise
	CloseTxFee
)

// String spells the close type the way the LX CSV reference column does.
func (c CloseType) String() string {
	switch c {
	case CloseBuyBack:
		return "Buy Back"
	case CloseSell:
		return "Sell"
	case CloseExpiry:
		return "Expired"
	case CloseExercise:
		return "Exercised"
	case CloseTxFee:
		return "Transaction Fee"
	default:
		return "unknown"
	}
}

// Lot is an event that creates, enlarges or closes a position: a signed
// quantity at a unit price on a settlement date. Whether it actually opens
// or closes is decided by the matcher, not by the lot itself; CloseType
// records how to label the close if it turns out to be one.
type Lot struct {
	ID        LotID
	CloseType CloseType
	Quantity  Quantity
	Price     Price
	Date      TaxDate

	// SortDate orders the lot inside a position queue. Usually the
	// settlement date; deposits are skewed far into the future.
	SortDate time.Time
}

func (l Lot) String() string {
	return fmt.Sprintf("%s { %s, date: %s, price: %s, qty: %s }",
		l.ID, l.CloseType, l.Date, l.Price, l.Quantity)
}

// NewDepositLot builds a long BTC lot from a deposited UTXO. A deposit
// had better never close a position; the TxFee close type is a tripwire,
// not a real label.
func NewDepositLot(op wire.OutPoint, price Price, sats int64, date time.Time) Lot {
	return Lot{
		ID:        OutpointLotID(op),
		CloseType: CloseTxFee,
		Quantity:  Sats(sats),
		Price:     price,
		Date:      NewTaxDate(date),
		SortDate:  date.Add(depositSortSkew),
	}
}

// NewFeeLot builds the short BTC lot that docks an on-chain transaction
// fee from a deposited lot. It must always close.
func NewFeeLot(sats int64, date time.Time) Lot {
	return Lot{
		CloseType: CloseTxFee,
		Quantity:  Sats(-sats),
		Date:      NewTaxDate(date),
		SortDate:  date,
	}
}

// NewTradeLot builds a lot from a trade fill. The fill quantity is signed
// (positive for bids) and the exchange fee is folded into the unit price:
// fees raise the basis of buys and lower the proceeds of sells.
func NewTradeLot(price Price, size Quantity, fee Price, date time.Time) Lot {
	adjusted := price
	if !fee.IsZero() {
		adjusted = price.Add(fee.Div(size))
	}
	closeType := CloseSell
	if size.IsPositive() {
		closeType = CloseBuyBack
	}
	return Lot{
		CloseType: closeType,
		Quantity:  size,
		Price:     adjusted,
		Date:      NewTaxDate(date),
		SortDate:  date,
	}
}

// NewExpiryLot builds the closing lot for contracts that expired
// worthless. LX fixes the timestamp at 22:00 UTC on the expiry date,
// whatever time the options actually stopped trading.
func NewExpiryLot(opt Option, nExpired int64) Lot {
	date := forcedToHour(opt.Expiry, exerciseHour)
	return Lot{
		CloseType: CloseExpiry,
		Quantity:  Contracts(nExpired),
		Date:      NewTaxDate(date),
		SortDate:  date,
	}
}

// NewAssignmentLot builds the closing lot for assigned contracts, priced
// at the option's intrinsic value against the reference BTC price, at the
// same fixed 22:00 UTC timestamp as expiries.
func NewAssignmentLot(opt Option, nAssigned int64, btcPrice Price) Lot {
	date := forcedToHour(opt.Expiry, exerciseHour)
	return Lot{
		CloseType: CloseExercise,
		Quantity:  Contracts(nAssigned),
		Price:     opt.IntrinsicValue(btcPrice),
		Date:      NewTaxDate(date),
		SortDate:  date,
	}
}
