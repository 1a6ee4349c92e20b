package lxtax

import (
	"fmt"
	"sort"
	"time"
)

// GainType classifies the tax character of a realized gain.
type GainType int

const (
	// GainShortTerm is an ordinary capital gain held 365 days or less.
	GainShortTerm GainType = iota
	// GainLongTerm is an ordinary capital gain held longer than 365 days.
	GainLongTerm
	// Gain1256 is a section 1256 contract gain (60% long / 40% short
	// regardless of holding period).
	Gain1256
)

// String spells the gain type the way the LX CSV tax-character column does.
func (g GainType) String() string {
	switch g {
	case GainShortTerm:
		return "Short-term"
	case GainLongTerm:
		return "Long-term"
	case Gain1256:
		return "-1256-"
	default:
		return "unknown"
	}
}

// shortTermLimit is the longest holding period still taxed short-term.
const shortTermLimit = 365 * 24 * time.Hour

// Close records the point where an opening lot's quantity was reduced.
// Quantity carries the sign of the closing transaction; the matched open
// lot had the opposite sign.
type Close struct {
	Type       CloseType
	Gain       GainType
	OpenID     LotID
	OpenPrice  Price
	OpenDate   TaxDate
	ClosePrice Price
	CloseDate  TaxDate
	Quantity   Quantity

	// openLong remembers the matched lot's direction: LX swaps the date
	// and dollar columns of CSV rows that close long positions.
	openLong bool
}

func (c Close) String() string {
	return fmt.Sprintf("%s { %s, date: %s, price: %s, qty: %s }",
		c.OpenID, c.Type, c.CloseDate, c.ClosePrice, c.Quantity)
}

// Position is the per-asset queue of open lots. All queued lots have the
// same sign at any instant: a position is never simultaneously long and
// short the same asset.
type Position struct {
	lots TimeMap[Lot]
}

// Balance returns the net signed quantity currently queued.
func (p *Position) Balance() Quantity {
	total := Zero
	for lot := range p.lots.Values() {
		total = total.Add(lot.Quantity)
	}
	return total
}

// pushEvent applies an incoming lot to the position and reports what
// happened: zero or more Closes, plus the lot that was stored if any
// part of it opened (or enlarged, or reversed) the position.
//
// The matching lot to close against is the earliest-inserted one for
// section 1256 assets (true FIFO, matching LX), and the one with the
// highest cost basis for everything else (legally optimal for BTC spot).
// mint supplies a fresh lot ID when a lot without one gets stored.
func (p *Position) pushEvent(open Lot, sortDate time.Time, is1256 bool, mint func() LotID) ([]Close, *Lot) {
	store := func(l Lot) *Lot {
		if l.ID == "" {
			l.ID = mint()
		}
		p.lots.Insert(sortDate, l)
		return &l
	}

	// Empty position, or an incoming lot pointing the same way: the lot
	// opens or enlarges, nothing closes.
	if first, ok := p.lots.First(); !ok || first.Value.Quantity.SameSign(open.Quantity) {
		return nil, store(open)
	}

	// The incoming lot opposes the position: close queued lots until the
	// incoming quantity is used up or the queue runs dry.
	var closes []Close
	for !open.Quantity.IsZero() {
		var entry Entry[Lot]
		var ok bool
		if is1256 {
			entry, ok = p.lots.PopFirst()
		} else {
			entry, ok = p.lots.PopMax(func(a, b Lot) bool {
				return a.Price.GreaterThan(b.Price)
			})
		}
		if !ok {
			// Fully closed out and still have quantity left: the leftover
			// opens a fresh position in the opposite direction.
			return closes, store(open)
		}
		front := entry.Value
		if !front.Quantity.IsZero() && front.Quantity.SameSign(open.Quantity) {
			panic(fmt.Sprintf("lot %s matched against same-signed lot %s", open, front))
		}

		gain := Gain1256
		if !is1256 {
			if open.Date.Sub(front.Date.Time) <= shortTermLimit {
				gain = GainShortTerm
			} else {
				gain = GainLongTerm
			}
		}
		cl := Close{
			Type:       open.CloseType,
			Gain:       gain,
			OpenID:     front.ID,
			OpenPrice:  front.Price,
			OpenDate:   front.Date,
			ClosePrice: open.Price,
			CloseDate:  open.Date,
			openLong:   front.Quantity.IsPositive(),
		}

		if front.Quantity.AbsGreaterThan(open.Quantity) {
			// Partial close: shrink the matched lot and put the remainder
			// back in its original place in the queue.
			front.Quantity = front.Quantity.Add(open.Quantity)
			cl.Quantity = open.Quantity
			open.Quantity = open.Quantity.Sub(open.Quantity)
			entry.Value = front
			p.lots.Reinsert(entry)
		} else {
			// Full close of the matched lot.
			cl.Quantity = front.Quantity.Neg()
			open.Quantity = open.Quantity.Add(front.Quantity)
		}
		closes = append(closes, cl)
	}
	return closes, nil
}

// TaxEvent is one loggable entry of the reconciliation run: either an
// Open or a Close, never both.
type TaxEvent struct {
	Date  TaxDate
	Label Label
	Open  *Lot
	Close *Close
}

// PositionTracker owns the per-asset positions and the ordered log of tax
// events emitted while pushing lots through them.
type PositionTracker struct {
	positions map[Label]*Position
	events    []TaxEvent
	nextBtc   int
	nextOpt   int
}

// NewPositionTracker returns an empty tracker. The synthetic lot ID
// counters are owned here, not in package state, so runs are
// deterministic and independent.
func NewPositionTracker() *PositionTracker {
	return &PositionTracker{positions: make(map[Label]*Position)}
}

// mintID returns the next synthetic lot ID for the given asset label.
func (t *PositionTracker) mintID(label Label) func() LotID {
	return func() LotID {
		if label.IsBTC() {
			t.nextBtc++
			return LotID(fmt.Sprintf("lx-btc-%04d", t.nextBtc))
		}
		t.nextOpt++
		return LotID(fmt.Sprintf("lx-opt-%04d", t.nextOpt))
	}
}

// Position returns the current position for a label, or nil.
func (t *PositionTracker) Position(label Label) *Position {
	return t.positions[label]
}

// PushLot routes a lot to its asset's position, applies it, and logs the
// resulting Closes and Open. It returns the number of lots closed.
//
// Whether matching is FIFO (section 1256) or price-priority is decided by
// the label: on LX, everything that is not bitcoin is a 1256 contract.
func (t *PositionTracker) PushLot(label Label, lot Lot) int {
	pos := t.positions[label]
	if pos == nil {
		pos = &Position{}
		t.positions[label] = pos
	}
	closes, open := pos.pushEvent(lot, lot.SortDate, !label.IsBTC(), t.mintID(label))
	for i := range closes {
		cl := closes[i]
		t.events = append(t.events, TaxEvent{Date: lot.Date, Label: label, Close: &cl})
	}
	if open != nil {
		t.events = append(t.events, TaxEvent{Date: lot.Date, Label: label, Open: open})
	}
	return len(closes)
}

// Events returns the tax events recorded so far, in log order.
func (t *PositionTracker) Events() []TaxEvent {
	return t.events
}

// SortEvents orders the event log the way LX orders its CSV: by event
// date, and among closes sharing the same date, by the date the closed
// lot was opened (simultaneous expiries come out in open order).
// Everything else keeps its log order. The secondary keys are explicit
// rather than an artifact of a stable sort.
func (t *PositionTracker) SortEvents() {
	type rec struct {
		ev  TaxEvent
		idx int
	}
	recs := make([]rec, len(t.events))
	for i, ev := range t.events {
		recs[i] = rec{ev: ev, idx: i}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.ev.Date.Equal(b.ev.Date.Time) {
			return a.ev.Date.Before(b.ev.Date.Time)
		}
		if a.ev.Close != nil && b.ev.Close != nil &&
			!a.ev.Close.OpenDate.Equal(b.ev.Close.OpenDate.Time) {
			return a.ev.Close.OpenDate.Before(b.ev.Close.OpenDate.Time)
		}
		return a.idx < b.idx
	})
	for i, r := range recs {
		t.events[i] = r.ev
	}
}
