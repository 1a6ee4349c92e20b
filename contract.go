package lxtax

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContractKind discriminates the LX product types.
type ContractKind int

const (
	KindOption ContractKind = iota
	KindNextDay
	KindFuture
)

// Contract is the resolved metadata of a single LX contract, as returned
// by the trading/contracts and trading/positions endpoints.
type Contract struct {
	ID         string
	Kind       ContractKind
	Underlying Underlying
	Multiplier int64
	WireLabel  string // LX's own label, kept for diagnostics only
	Expiry     time.Time
	Opt        Option // Kind == KindOption only
}

// contractJSON is the wire shape of a contract record.
type contractJSON struct {
	ID             json.Number `json:"id"`
	DerivativeType string      `json:"derivative_type"`
	StrikePrice    *int64      `json:"strike_price"` // cents
	IsCall         *bool       `json:"is_call"`
	DateExpires    string      `json:"date_expires"`
	Label          string      `json:"label"`
	Multiplier     int64       `json:"multiplier"`
	Underlying     Underlying  `json:"underlying_asset"`
	Type           string      `json:"type"` // "put" or "call", options only
}

// UnmarshalJSON decodes the LX wire form, converting the cents-scaled
// strike and the nonstandard timestamp format.
func (c *Contract) UnmarshalJSON(b []byte) error {
	var js contractJSON
	if err := json.Unmarshal(b, &js); err != nil {
		return err
	}
	if js.DateExpires == "" {
		return fmt.Errorf("contract %s: missing field 'date_expires'", js.ID)
	}
	expiry, err := parseLXTime(js.DateExpires)
	if err != nil {
		return fmt.Errorf("contract %s: %w", js.ID, err)
	}

	c.ID = js.ID.String()
	c.Underlying = js.Underlying
	c.Multiplier = js.Multiplier
	c.WireLabel = js.Label
	c.Expiry = expiry

	switch js.DerivativeType {
	case "options_contract":
		c.Kind = KindOption
		if js.StrikePrice == nil {
			return fmt.Errorf("contract %s: missing field 'strike_price'", js.ID)
		}
		strike := PriceFromCents(*js.StrikePrice)
		switch js.Type {
		case "call":
			c.Opt = NewCall(strike, expiry)
		case "put":
			c.Opt = NewPut(strike, expiry)
		default:
			return fmt.Errorf("contract %s: missing or unknown option type %q", js.ID, js.Type)
		}
	case "day_ahead_swap":
		c.Kind = KindNextDay
	case "future_contract":
		c.Kind = KindFuture
	default:
		return fmt.Errorf("contract %s: unknown derivative type %q", js.ID, js.DerivativeType)
	}
	return nil
}

// AsOption returns the option and true for option contracts.
func (c *Contract) AsOption() (Option, bool) {
	if c.Kind == KindOption {
		return c.Opt, true
	}
	return Option{}, false
}

// TaxAsset projects the contract into the asset classification the tax
// CSVs use. Futures are not classified; LX never issued a 1099 line for
// one, and guessing would silently corrupt the figures.
func (c *Contract) TaxAsset() TaxAsset {
	switch c.Kind {
	case KindOption:
		return TaxAsset{Kind: TaxOption, Underlying: c.Underlying, Option: c.Opt}
	case KindNextDay:
		return TaxAsset{Kind: TaxNextDay, Underlying: c.Underlying, Expiry: c.Expiry}
	default:
		panic(fmt.Sprintf("no tax classification for futures contract %s", c.ID))
	}
}

// TaxLabel is the position-map key for the contract: "BTC" for next-day
// swaps, the CSV description for options.
func (c *Contract) TaxLabel() Label {
	return Label(c.TaxAsset().String())
}
