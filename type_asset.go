package lxtax

import (
	"encoding/json"
	"fmt"
	"time"
)

// Underlying is the physical reference asset of a derivative.
type Underlying int

const (
	UnderlyingBtc Underlying = iota
	UnderlyingEth
)

func (u Underlying) String() string {
	switch u {
	case UnderlyingBtc:
		return "BTC"
	case UnderlyingEth:
		return "ETH"
	default:
		return "unknown"
	}
}

// UnmarshalJSON accepts the LX wire names ("CBTC", "ETH").
func (u *Underlying) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "CBTC":
		*u = UnderlyingBtc
	case "ETH":
		*u = UnderlyingEth
	default:
		return fmt.Errorf("unknown underlying asset %q", s)
	}
	return nil
}

// AssetKind discriminates the Asset union.
type AssetKind int

const (
	AssetBtc AssetKind = iota
	AssetEth
	AssetUsd
	AssetNextDay
	AssetOption
	AssetFuture
)

// Asset is the primary "what is being tracked" type. It is never directly
// (de)serialized: the LX API spells assets a half dozen different ways, so
// wire formats go through the more specific projections (DepositAsset,
// TaxAsset) which all convert to and from Asset.
type Asset struct {
	Kind       AssetKind
	Underlying Underlying // NextDay, Option and Future kinds only
	Expiry     time.Time  // NextDay and Future kinds only
	Option     Option     // Option kind only (carries its own expiry)
}

// BtcAsset is the plain bitcoin asset.
func BtcAsset() Asset { return Asset{Kind: AssetBtc} }

// UsdAsset is the US dollar asset.
func UsdAsset() Asset { return Asset{Kind: AssetUsd} }

func (a Asset) String() string {
	switch a.Kind {
	case AssetBtc:
		return "BTC"
	case AssetEth:
		return "ETH"
	case AssetUsd:
		return "USD"
	case AssetNextDay:
		return fmt.Sprintf("%s NextDay %s", a.Underlying, a.Expiry.Format("2006-01-02"))
	case AssetOption:
		return fmt.Sprintf("%s %s", a.Underlying, a.Option)
	case AssetFuture:
		return fmt.Sprintf("%s Future %s", a.Underlying, a.Expiry.Format("2006-01-02"))
	default:
		return "unknown"
	}
}

// DepositAsset is the asset projection used by the funds endpoints. Some
// of them wrap it in an extra {"name": ...} indirection; both spellings
// normalize here.
type DepositAsset int

const (
	DepositBtc DepositAsset = iota
	DepositEth
	DepositUsd
)

func (d DepositAsset) String() string {
	switch d {
	case DepositBtc:
		return "BTC"
	case DepositEth:
		return "ETH"
	case DepositUsd:
		return "USD"
	default:
		return "unknown"
	}
}

// Asset converts the deposit projection back to the primary asset type.
func (d DepositAsset) Asset() Asset {
	switch d {
	case DepositBtc:
		return Asset{Kind: AssetBtc}
	case DepositEth:
		return Asset{Kind: AssetEth}
	default:
		return Asset{Kind: AssetUsd}
	}
}

// UnmarshalJSON accepts either the bare wire name or the {"name": ...}
// wrapped form used by the deposits endpoint.
func (d *DepositAsset) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var wrapped struct {
			Name string `json:"name"`
		}
		if err2 := json.Unmarshal(b, &wrapped); err2 != nil {
			return fmt.Errorf("deposit asset is neither a string nor a name object: %w", err)
		}
		s = wrapped.Name
	}
	switch s {
	case "CBTC":
		*d = DepositBtc
	case "ETH":
		*d = DepositEth
	case "USD":
		*d = DepositUsd
	default:
		return fmt.Errorf("unknown deposit asset %q", s)
	}
	return nil
}

// TaxAssetKind discriminates the TaxAsset union.
type TaxAssetKind int

const (
	// TaxBitcoin is actual deposited BTC.
	TaxBitcoin TaxAssetKind = iota
	// TaxNextDay is next-day bitcoin, which LX reports simply as BTC.
	TaxNextDay
	// TaxOption is a put or call option.
	TaxOption
)

// TaxAsset is the asset projection reflected in the end-of-year tax CSVs.
type TaxAsset struct {
	Kind       TaxAssetKind
	Underlying Underlying // NextDay and Option kinds only
	Expiry     time.Time  // NextDay kind only
	Option     Option     // Option kind only
}

// IsBitcoinLike reports whether the asset is functionally identical to
// bitcoin for tax purposes.
func (t TaxAsset) IsBitcoinLike() bool { return t.Kind != TaxOption }

// Is1256 reports whether the asset gets section 1256 (60/40) treatment.
// On LX this is exactly the non-bitcoin-like product set.
func (t TaxAsset) Is1256() bool { return t.Kind == TaxOption }

// Asset converts the tax projection back to the primary asset type.
func (t TaxAsset) Asset() Asset {
	switch t.Kind {
	case TaxNextDay:
		return Asset{Kind: AssetNextDay, Underlying: t.Underlying, Expiry: t.Expiry}
	case TaxOption:
		return Asset{Kind: AssetOption, Underlying: t.Underlying, Option: t.Option}
	default:
		return Asset{Kind: AssetBtc}
	}
}

// String renders the asset the way LX describes it in CSV rows, e.g.
// "BTC" or "BTC Mini 2021-07-16 Put $32,000.00".
func (t TaxAsset) String() string {
	if t.IsBitcoinLike() {
		return "BTC"
	}
	return fmt.Sprintf("%s Mini %s %s %s",
		t.Underlying,
		t.Option.Expiry.Format("2006-01-02"),
		t.Option.PC,
		t.Option.Strike.Display(),
	)
}

// Label is the key into the per-asset position map: "BTC" for everything
// bitcoin-like, or the contract's CSV description for options.
type Label string

// BtcLabel is the label shared by spot bitcoin, deposits and next-day swaps.
const BtcLabel Label = "BTC"

// IsBTC reports whether the label tracks bitcoin itself.
func (l Label) IsBTC() bool { return l == BtcLabel }
