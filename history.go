package lxtax

import (
	"encoding/json"
	"fmt"
	"iter"
	"time"
)

// lxTime is a timestamp field as the LX history endpoints spell it.
type lxTime struct {
	time.Time
}

func (t *lxTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := parseLXTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// meta is the pagination envelope common to all history endpoints.
type meta struct {
	Next *string `json:"next"`
}

// nextURL returns the next page to fetch, if any.
func (m *meta) nextURL() string {
	if m == nil || m.Next == nil {
		return ""
	}
	return *m.Next
}

// Deposits is the payload of the funds/deposits endpoint.
type Deposits struct {
	Data []struct {
		Amount int64        `json:"amount"`
		Asset  DepositAsset `json:"asset"` // wrapped in a {"name": ...} object here
		// The deposit address record repeats the asset, unwrapped.
		DepositAddress struct {
			Address string       `json:"address"`
			Asset   DepositAsset `json:"asset"`
		} `json:"deposit_address"`
		CreatedAt lxTime `json:"created_at"`
	} `json:"data"`
	Meta *meta `json:"meta"`
}

// NextURL returns the next page to fetch, if any.
func (d *Deposits) NextURL() string { return d.Meta.nextURL() }

// Withdrawals is the payload of the funds/withdrawals endpoint.
type Withdrawals struct {
	Data []struct {
		Amount int64 `json:"amount"`
		// No {"name": ...} indirection on this endpoint, for some reason.
		Asset     DepositAsset `json:"asset"`
		CreatedAt lxTime       `json:"created_at"`
	} `json:"data"`
	Meta *meta `json:"meta"`
}

// NextURL returns the next page to fetch, if any.
func (w *Withdrawals) NextURL() string { return w.Meta.nextURL() }

// Trades is the payload of the trading/trades endpoint.
type Trades struct {
	Data []struct {
		ContractID    json.Number `json:"contract_id"`
		ExecutionTime lxTime      `json:"execution_time"`
		FilledPrice   int64       `json:"filled_price"` // cents
		FilledSize    int64       `json:"filled_size"`  // always positive
		Side          string      `json:"side"`         // "bid" or "ask"
		Fee           int64       `json:"fee"`          // cents
	} `json:"data"`
	Meta *meta `json:"meta"`
}

// NextURL returns the next page to fetch, if any.
func (t *Trades) NextURL() string { return t.Meta.nextURL() }

// Positions is the payload of the trading/positions endpoint.
type Positions struct {
	Data []struct {
		Size         int64    `json:"size"`          // signed by long/short
		AssignedSize int64    `json:"assigned_size"` // always reported positive
		Contract     Contract `json:"contract"`
		HasSettled   bool     `json:"has_settled"`
	} `json:"data"`
	Meta *meta `json:"meta"`
}

// NextURL returns the next page to fetch, if any.
func (p *Positions) NextURL() string { return p.Meta.nextURL() }

// ContractResolver fetches full contract metadata by ID. Implementations
// may hit the network; failures are fatal for the run.
type ContractResolver interface {
	FetchContract(id string) (*Contract, error)
}

// ContractCache remembers every contract revealed by any endpoint, keyed
// by contract ID, and falls back to a resolver for contracts only ever
// referenced by trades.
type ContractCache struct {
	byID     map[string]*Contract
	resolver ContractResolver
}

// NewContractCache returns an empty cache backed by the given resolver,
// which may be nil if every contract is expected to be pre-populated.
func NewContractCache(resolver ContractResolver) *ContractCache {
	return &ContractCache{byID: make(map[string]*Contract), resolver: resolver}
}

// Put stores a contract.
func (c *ContractCache) Put(ct *Contract) { c.byID[ct.ID] = ct }

// Len reports how many contracts are cached.
func (c *ContractCache) Len() int { return len(c.byID) }

// Get returns the contract for an ID, resolving it on demand if unseen.
func (c *ContractCache) Get(id string) (*Contract, error) {
	if ct, ok := c.byID[id]; ok {
		return ct, nil
	}
	if c.resolver == nil {
		return nil, fmt.Errorf("unknown contract ID %s", id)
	}
	ct, err := c.resolver.FetchContract(id)
	if err != nil {
		return nil, fmt.Errorf("looking up contract %s: %w", id, err)
	}
	c.byID[id] = ct
	return ct, nil
}

// Event is one normalized entry of the account history. The concrete
// types are DepositEvent, WithdrawalEvent, TradeEvent and ExpiryEvent.
type Event interface {
	isEvent()
}

// DepositEvent is an on-chain or fiat deposit into the exchange.
type DepositEvent struct {
	Amount  Quantity
	Asset   DepositAsset
	Address string
}

// WithdrawalEvent is a withdrawal out of the exchange. Not tax-relevant.
type WithdrawalEvent struct {
	Amount Quantity
	Asset  DepositAsset
}

// TradeEvent is a single fill. Size is signed: positive for fills on the
// bid side, negative for the ask side.
type TradeEvent struct {
	Contract *Contract
	Price    Price
	Size     int64
	Fee      Price
}

// ExpiryEvent is the settlement of a position at contract expiry, split
// into assigned and expired quantities. Both are signed as net changes in
// contracts held, so for a long position both are negative.
type ExpiryEvent struct {
	Contract *Contract
	Assigned int64
	Expired  int64
}

func (DepositEvent) isEvent()    {}
func (WithdrawalEvent) isEvent() {}
func (TradeEvent) isEvent()      {}
func (ExpiryEvent) isEvent()     {}

// History is the normalized, time-ordered event stream of one account.
type History struct {
	events TimeMap[Event]
}

// NewHistory returns an empty history.
func NewHistory() *History { return &History{} }

// Len reports the number of imported events.
func (h *History) Len() int { return h.events.Len() }

// Events iterates over (time, event) pairs in chronological order, with
// insertion order breaking ties.
func (h *History) Events() iter.Seq2[time.Time, Event] { return h.events.All() }

// ImportDeposits normalizes a deposits page into the history.
func (h *History) ImportDeposits(deposits *Deposits) error {
	for _, dep := range deposits.Data {
		if dep.Asset != dep.DepositAddress.Asset {
			return fmt.Errorf("deposit at %s: asset %s does not match deposit address asset %s",
				dep.CreatedAt.Time, dep.Asset, dep.DepositAddress.Asset)
		}
		h.events.Insert(dep.CreatedAt.Time, DepositEvent{
			Amount:  UnknownQuantity{N: dep.Amount}.SetAsset(dep.Asset.Asset()),
			Asset:   dep.Asset,
			Address: dep.DepositAddress.Address,
		})
	}
	return nil
}

// ImportWithdrawals normalizes a withdrawals page into the history.
func (h *History) ImportWithdrawals(withdrawals *Withdrawals) {
	for _, wd := range withdrawals.Data {
		h.events.Insert(wd.CreatedAt.Time, WithdrawalEvent{
			Amount: UnknownQuantity{N: wd.Amount}.SetAsset(wd.Asset.Asset()),
			Asset:  wd.Asset,
		})
	}
}

// ImportTrades normalizes a trades page into the history, resolving
// contract metadata through the cache. The side field collapses into the
// sign of the size: bids are positive, asks negative.
func (h *History) ImportTrades(trades *Trades, contracts *ContractCache) error {
	for _, trade := range trades.Data {
		contract, err := contracts.Get(trade.ContractID.String())
		if err != nil {
			return fmt.Errorf("importing trade at %s: %w", trade.ExecutionTime.Time, err)
		}
		size := trade.FilledSize
		switch trade.Side {
		case "bid":
		case "ask":
			size = -size
		default:
			return fmt.Errorf("trade at %s: unknown side %q", trade.ExecutionTime.Time, trade.Side)
		}
		h.events.Insert(trade.ExecutionTime.Time, TradeEvent{
			Contract: contract,
			Price:    PriceFromCents(trade.FilledPrice),
			Size:     size,
			Fee:      PriceFromCents(trade.Fee),
		})
	}
	return nil
}

// ImportPositions normalizes a positions page into expiry events and
// feeds the embedded contract metadata to the cache. Only settled
// positions have expired; the others are still open and carry no tax
// consequence yet.
//
// LX reports `size` signed by direction and `assigned_size` always
// positive, and never reports the expired size at all, so both have to be
// reconstructed as net changes in contracts held: after expiry the net
// position is zero.
func (h *History) ImportPositions(positions *Positions, contracts *ContractCache) error {
	for i := range positions.Data {
		pos := &positions.Data[i]
		contracts.Put(&pos.Contract)
		if !pos.HasSettled {
			continue
		}

		abs := pos.Size
		if abs < 0 {
			abs = -abs
		}
		if pos.AssignedSize < 0 || pos.AssignedSize > abs {
			return fmt.Errorf("position in contract %s: assigned size %d out of range for size %d",
				pos.Contract.ID, pos.AssignedSize, pos.Size)
		}
		// Reconstructed so that assigned + expired == -size: after expiry
		// the net position is flat.
		var assigned, expired int64
		if pos.Size > 0 {
			assigned = -pos.AssignedSize
			expired = -pos.Size + pos.AssignedSize
		} else {
			assigned = pos.AssignedSize
			expired = -pos.Size - pos.AssignedSize
		}

		h.events.Insert(pos.Contract.Expiry, ExpiryEvent{
			Contract: &pos.Contract,
			Assigned: assigned,
			Expired:  expired,
		})
	}
	return nil
}
