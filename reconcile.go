package lxtax

import (
	"fmt"
	"log"
	"time"

	"github.com/btcsuite/btcd/wire"
)

// PriceTable answers "what was bitcoin worth at this instant" during
// reconciliation. Exchange-published price references take priority,
// because assignments must be priced with the exact figures the exchange
// itself filed; the market history is only a fallback.
type PriceTable struct {
	refs     map[time.Time]Price
	historic *Historic
}

// NewPriceTable indexes the given references over a market history
// fallback. References repeated at the same instant must agree to the
// cent; the exchange derives them from independent CSV lines and a
// disagreement means the file was mis-parsed.
func NewPriceTable(refs []PriceRef, historic *Historic) (*PriceTable, error) {
	table := &PriceTable{refs: make(map[time.Time]Price), historic: historic}
	for _, ref := range refs {
		at := ref.At.UTC()
		if prev, ok := table.refs[at]; ok {
			if prev.Sub(ref.Price).Cents() != 0 {
				return nil, fmt.Errorf("conflicting price references at %s: %s vs %s", at, prev, ref.Price)
			}
			continue
		}
		table.refs[at] = ref.Price
	}
	return table, nil
}

// RefAt returns the settlement price reference covering the given
// instant: the reference at the 21:00 UTC settlement stamp of that day,
// or failing that the 22:00 UTC exercise stamp. When neither exists it
// falls back to the market history with a warning, since the resulting
// figures may then disagree with the exchange's filing by a few cents.
func (pt *PriceTable) RefAt(at time.Time) Price {
	for _, hour := range []int{settlementHour, exerciseHour} {
		if p, ok := pt.refs[forcedToHour(at, hour)]; ok {
			return p
		}
	}
	log.Printf("warning, no exchange price reference near %s; using market history", at)
	return pt.historic.PriceAt(at)
}

// MarketPriceAt returns the plain market price, bypassing references.
// Used for deposits, which the exchange assigns no reference to.
func (pt *PriceTable) MarketPriceAt(at time.Time) Price {
	return pt.historic.PriceAt(at)
}

// TaxReport is the outcome of one reconciliation run: the full sorted
// tax event log, to be filtered to the target year at rendering time.
type TaxReport struct {
	Year   int
	Events []TaxEvent
}

// Reconcile walks the history in time order, stopping after the tax
// year ends, and pushes every tax-relevant event through a fresh
// position tracker. The lots map carries acquisition info for wallet
// coins, keyed by outpoint lot ID, from the configuration's lot
// database; a deposit UTXO missing from it aborts the run, since its
// cost basis cannot be established.
func Reconcile(history *History, year int, prices *PriceTable, txdb *TxDB, lots map[LotID]LotInfo) (*TaxReport, error) {
	yearEnd := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	tracker := NewPositionTracker()

	for at, event := range history.Events() {
		// Nothing after the year boundary can affect a close inside it.
		if !at.Before(yearEnd) {
			break
		}
		switch ev := event.(type) {
		case DepositEvent:
			if err := pushDeposit(tracker, prices, txdb, lots, at, ev); err != nil {
				return nil, fmt.Errorf("deposit of %s at %s: %w", ev.Amount, at, err)
			}
		case WithdrawalEvent:
			// not a taxable event
		case TradeEvent:
			pushTrade(tracker, at, ev)
		case ExpiryEvent:
			pushExpiry(tracker, prices, ev)
		default:
			panic(fmt.Sprintf("unhandled history event %T", event))
		}
	}

	tracker.SortEvents()
	return &TaxReport{Year: year, Events: tracker.Events()}, nil
}

// pushDeposit turns a BTC deposit into one or more opening lots. A
// deposit funded by a single-output transaction is assumed to be a
// self-transfer, so every input UTXO becomes its own lot and the mining
// fee is docked from the inputs as a partial disposal. Anything else is
// one lot for the deposited amount.
func pushDeposit(tracker *PositionTracker, prices *PriceTable, txdb *TxDB, lots map[LotID]LotInfo, at time.Time, ev DepositEvent) error {
	switch ev.Asset.Asset().Kind {
	case AssetBtc:
	case AssetUsd:
		return nil // cash deposits are not tax-relevant
	default:
		panic(fmt.Sprintf("unsupported deposit asset %s", ev.Asset))
	}

	// Acquisition info for a coin must be on record in the lot
	// database; a coin without it has no trackable cost basis.
	lotInfo := func(op wire.OutPoint) (Price, time.Time, error) {
		id := OutpointLotID(op)
		info, ok := lots[id]
		if !ok {
			return Price{}, time.Time{}, fmt.Errorf("lot %s is not in the lot database; record it with record-lot", id)
		}
		return info.Price, info.Date, nil
	}

	pushOpen := func(lot Lot) {
		if n := tracker.PushLot(BtcLabel, lot); n != 0 {
			panic(fmt.Sprintf("deposit lot %s closed %d lots", lot, n))
		}
	}

	remaining := ev.Amount.Int()
	tx, vout, err := txdb.FindTxForDeposit(ev.Address, ev.Amount)
	if err != nil {
		log.Printf("warning, %v; treating deposit as a single lot at market", err)
		price, date := prices.MarketPriceAt(at), at
		pushOpen(NewDepositLot(wire.OutPoint{}, price, remaining, date))
		return nil
	}

	if len(tx.TxOut) != 1 {
		// Shared-output transaction, probably from an exchange; only
		// the paid output is ours.
		op := wire.OutPoint{Hash: tx.TxHash(), Index: vout}
		price, date, err := lotInfo(op)
		if err != nil {
			return err
		}
		pushOpen(NewDepositLot(op, price, remaining, date))
		return nil
	}

	for _, in := range tx.TxIn {
		op := in.PreviousOutPoint
		txout, err := txdb.FindTxOut(op)
		if err != nil {
			log.Printf("warning, %v; record the transaction to track this input as a lot", err)
			continue
		}
		price, date, err := lotInfo(op)
		if err != nil {
			return err
		}
		pushOpen(NewDepositLot(op, price, txout.Value, date))
		if txout.Value > remaining {
			// The surplus over the deposited amount is the mining fee,
			// docked from this input as a partial loss.
			fee := NewFeeLot(txout.Value-remaining, at)
			if n := tracker.PushLot(BtcLabel, fee); n != 1 {
				panic(fmt.Sprintf("fee lot %s closed %d lots", fee, n))
			}
			remaining = 0
		} else {
			remaining -= txout.Value
		}
	}
	if remaining > 0 {
		// Inputs we had no data for; cover the shortfall with a lot at
		// the deposit itself.
		price, date := prices.MarketPriceAt(at), at
		pushOpen(NewDepositLot(wire.OutPoint{Hash: tx.TxHash(), Index: vout}, price, remaining, date))
	}
	return nil
}

// pushTrade turns a fill into an opening-or-closing lot. Next-day swaps
// are bitcoin that settles the following day at the fixed 21:00 UTC
// settlement stamp, whatever the fill's nominal timestamp says; options
// take effect when filled.
func pushTrade(tracker *PositionTracker, at time.Time, ev TradeEvent) {
	switch ev.Contract.Kind {
	case KindNextDay:
		settle := forcedToHour(ev.Contract.Expiry, settlementHour)
		lot := NewTradeLot(ev.Price, Sats(ev.Size*satsPerContract), ev.Fee, settle)
		tracker.PushLot(BtcLabel, lot)
	case KindOption:
		lot := NewTradeLot(ev.Price, Contracts(ev.Size), ev.Fee, at)
		tracker.PushLot(ev.Contract.TaxLabel(), lot)
	default:
		panic(fmt.Sprintf("trading in contract %s (%s) is not supported", ev.Contract.ID, ev.Contract.WireLabel))
	}
}

// satsPerContract converts contract counts to satoshis: one contract
// delivers 1/100 BTC.
const satsPerContract = 1_000_000

// pushExpiry settles an expired position. Only options produce expiry
// tax events: a next-day swap's delivery is already accounted for by the
// originating trade. An assignment closes the option at intrinsic value
// and synthesizes the BTC spot trade of the physical delivery, both at
// the exchange's price reference for the expiry.
func pushExpiry(tracker *PositionTracker, prices *PriceTable, ev ExpiryEvent) {
	opt, ok := ev.Contract.AsOption()
	if !ok {
		if ev.Contract.Kind == KindNextDay {
			if ev.Expired != 0 {
				panic(fmt.Sprintf("next-day swap %s expired with %d contracts unassigned", ev.Contract.ID, ev.Expired))
			}
			return
		}
		panic(fmt.Sprintf("settlement of contract %s (%s) is not supported", ev.Contract.ID, ev.Contract.WireLabel))
	}
	label := ev.Contract.TaxLabel()

	if ev.Expired != 0 {
		tracker.PushLot(label, NewExpiryLot(opt, ev.Expired))
	}
	if ev.Assigned != 0 {
		ref := prices.RefAt(opt.Expiry)
		tracker.PushLot(label, NewAssignmentLot(opt, ev.Assigned, ref))

		// The physical delivery: calls hand over bitcoin when we are
		// short and receive it when long, puts the other way around.
		// Basis is the market reference, not the strike.
		sats := ev.Assigned * satsPerContract
		if opt.PC == Call {
			sats = -sats
		}
		settle := forcedToHour(opt.Expiry, exerciseHour)
		tracker.PushLot(BtcLabel, NewTradeLot(ref, Sats(sats), Price{}, settle))
	}
}
