package lxtax

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

func TestOutpointLotID(t *testing.T) {
	hash, err := chainhash.NewHashFromStr(
		"deadbeef445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	if err != nil {
		t.Fatal(err)
	}
	op := wire.OutPoint{Hash: *hash, Index: 7}
	if got := OutpointLotID(op); got != "deadbeef-07" {
		t.Errorf("OutpointLotID = %q, want deadbeef-07", got)
	}
}

func TestTradeLotFoldsFee(t *testing.T) {
	at := date("2021-06-08T17:27:24Z")

	// A $0.50 fee on 2 contracts is $25 per BTC-equivalent: it raises the
	// basis of buys and lowers the proceeds of sells.
	buy := NewTradeLot(P("500"), Contracts(2), PriceFromCents(50), at)
	if !buy.Price.Equal(P("525")) {
		t.Errorf("buy price = %s, want 525.00", buy.Price)
	}
	if buy.CloseType != CloseBuyBack {
		t.Errorf("buy CloseType = %s", buy.CloseType)
	}

	sell := NewTradeLot(P("500"), Contracts(-2), PriceFromCents(50), at)
	if !sell.Price.Equal(P("475")) {
		t.Errorf("sell price = %s, want 475.00", sell.Price)
	}
	if sell.CloseType != CloseSell {
		t.Errorf("sell CloseType = %s", sell.CloseType)
	}

	free := NewTradeLot(P("500"), Contracts(-2), Price{}, at)
	if !free.Price.Equal(P("500")) {
		t.Errorf("fee-less price = %s, want 500.00", free.Price)
	}
}

func TestExpiryAndAssignmentStamps(t *testing.T) {
	opt := NewPut(P("32000"), date("2021-07-16T21:00:00Z"))

	exp := NewExpiryLot(opt, 3)
	if got := exp.Date.String(); got != "2021-07-16T22:00:00Z" {
		t.Errorf("expiry lot date = %s, want 22:00 stamp", got)
	}
	if exp.CloseType != CloseExpiry || !exp.Price.IsZero() {
		t.Errorf("expiry lot = %s", exp)
	}

	asg := NewAssignmentLot(opt, 2, P("31000"))
	if got := asg.Date.String(); got != "2021-07-16T22:00:00Z" {
		t.Errorf("assignment lot date = %s, want 22:00 stamp", got)
	}
	if asg.CloseType != CloseExercise {
		t.Errorf("assignment CloseType = %s", asg.CloseType)
	}
	// A 32,000 put assigned at 31,000 closes at $1,000 intrinsic.
	if !asg.Price.Equal(P("1000")) {
		t.Errorf("assignment price = %s, want 1000.00", asg.Price)
	}
}

func TestFeeLot(t *testing.T) {
	fee := NewFeeLot(1000, date("2021-03-01T12:00:00Z"))
	if fee.Quantity.Int() != -1000 || !fee.Quantity.SameUnit(Sats(0)) {
		t.Errorf("fee quantity = %s, want -1000 sats", fee.Quantity)
	}
	if fee.CloseType != CloseTxFee {
		t.Errorf("fee CloseType = %s", fee.CloseType)
	}
}
