package lxtax

import (
	"encoding/json"
	"strings"
	"testing"
)

const wirePut = `{ "id": 22256321, "name": null, "is_call": false, "strike_price": 400000,
  "min_increment": 100, "date_live": "2023-01-12 05:00:00+0000",
  "date_expires": "2023-12-29 21:00:00+0000", "date_exercise": "2023-12-29 22:00:00+0000",
  "derivative_type": "options_contract", "open_interest": 55, "multiplier": 10,
  "label": "ETH-29DEC2023-4000-Put", "active": true, "is_next_day": false,
  "is_ecp_only": false, "underlying_asset": "ETH", "collateral_asset": "ETH", "type": "put" }`

const wireCall = `{ "id": 22256298, "name": null, "is_call": true, "strike_price": 2500000,
  "min_increment": 100, "date_live": "2023-01-12 05:00:00+0000",
  "date_expires": "2023-12-29 21:00:00+0000", "date_exercise": "2023-12-29 22:00:00+0000",
  "derivative_type": "options_contract", "open_interest": 674, "multiplier": 100,
  "label": "BTC-Mini-29DEC2023-25000-Call", "active": true, "is_next_day": false,
  "is_ecp_only": false, "underlying_asset": "CBTC", "collateral_asset": "CBTC", "type": "call" }`

const wireNextDay = `{ "id": 22256348, "name": null, "is_call": null, "strike_price": null,
  "min_increment": 100, "date_live": "2023-02-13 21:00:00+0000",
  "date_expires": "2023-02-14 21:00:00+0000", "date_exercise": "2023-02-14 21:00:00+0000",
  "derivative_type": "day_ahead_swap", "open_interest": null, "multiplier": 100,
  "label": "BTC-Mini-14FEB2023-NextDay", "active": false, "is_next_day": true,
  "is_ecp_only": false, "underlying_asset": "CBTC", "collateral_asset": "CBTC" }`

const wireFuture = `{"active":true,"collateral_asset":"CBTC","date_exercise":null,
  "date_expires":"2023-03-31 21:00:00+0000","date_live":"2023-01-27 05:00:00+0000",
  "derivative_type":"future_contract","id":22256410,"is_call":null,"is_ecp_only":false,
  "is_next_day":false,"label":"BTC-Mini-31MAR2023-Future","min_increment":100,
  "multiplier":100,"name":null,"open_interest":null,"strike_price":null,
  "underlying_asset":"CBTC"}`

func mustContract(t *testing.T, s string) Contract {
	t.Helper()
	var c Contract
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		t.Fatalf("unmarshal contract: %v", err)
	}
	return c
}

func TestParseContractPut(t *testing.T) {
	c := mustContract(t, wirePut)
	if c.ID != "22256321" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Kind != KindOption {
		t.Fatalf("Kind = %v, want option", c.Kind)
	}
	if c.Underlying != UnderlyingEth {
		t.Errorf("Underlying = %v, want ETH", c.Underlying)
	}
	if c.Multiplier != 10 {
		t.Errorf("Multiplier = %d", c.Multiplier)
	}
	if c.Opt.PC != Put {
		t.Errorf("PC = %v, want Put", c.Opt.PC)
	}
	if !c.Opt.Strike.Equal(PriceFromCents(400000)) {
		t.Errorf("Strike = %s, want 4000.00", c.Opt.Strike)
	}
	want := date("2023-12-29T21:00:00Z")
	if !c.Expiry.Equal(want) {
		t.Errorf("Expiry = %s, want %s", c.Expiry, want)
	}
	if !c.Opt.Expiry.Equal(want) {
		t.Errorf("Opt.Expiry = %s, want %s", c.Opt.Expiry, want)
	}
}

func TestParseContractCall(t *testing.T) {
	c := mustContract(t, wireCall)
	if c.Kind != KindOption || c.Opt.PC != Call {
		t.Fatalf("got kind %v pc %v, want option call", c.Kind, c.Opt.PC)
	}
	if c.Underlying != UnderlyingBtc {
		t.Errorf("Underlying = %v, want BTC", c.Underlying)
	}
	if !c.Opt.Strike.Equal(P("25000")) {
		t.Errorf("Strike = %s, want 25000.00", c.Opt.Strike)
	}
	if got := c.TaxLabel(); got != "BTC Mini 2023-12-29 Call $25,000.00" {
		t.Errorf("TaxLabel = %q", got)
	}
}

func TestParseContractNextDay(t *testing.T) {
	c := mustContract(t, wireNextDay)
	if c.Kind != KindNextDay {
		t.Fatalf("Kind = %v, want next-day", c.Kind)
	}
	if c.ID != "22256348" {
		t.Errorf("ID = %q", c.ID)
	}
	if want := date("2023-02-14T21:00:00Z"); !c.Expiry.Equal(want) {
		t.Errorf("Expiry = %s, want %s", c.Expiry, want)
	}
	if _, ok := c.AsOption(); ok {
		t.Error("AsOption reported a next-day swap as an option")
	}
	if got := c.TaxLabel(); got != BtcLabel {
		t.Errorf("TaxLabel = %q, want %q", got, BtcLabel)
	}
}

func TestParseContractFuture(t *testing.T) {
	c := mustContract(t, wireFuture)
	if c.Kind != KindFuture {
		t.Fatalf("Kind = %v, want future", c.Kind)
	}
	mustPanic(t, "TaxAsset on future", func() { c.TaxAsset() })
}

func TestParseContractErrors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{
			"missing expiry",
			`{"id": 1, "derivative_type": "day_ahead_swap"}`,
			"date_expires",
		},
		{
			"missing strike",
			`{"id": 2, "derivative_type": "options_contract", "type": "call",
			  "date_expires": "2023-12-29 21:00:00+0000"}`,
			"strike_price",
		},
		{
			"missing option type",
			`{"id": 3, "derivative_type": "options_contract", "strike_price": 100000,
			  "date_expires": "2023-12-29 21:00:00+0000"}`,
			"option type",
		},
		{
			"unknown derivative",
			`{"id": 4, "derivative_type": "perpetual_swap",
			  "date_expires": "2023-12-29 21:00:00+0000"}`,
			"unknown derivative type",
		},
		{
			"bad timestamp",
			`{"id": 5, "derivative_type": "day_ahead_swap", "date_expires": "not a time"}`,
			"not a time",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Contract
			err := json.Unmarshal([]byte(tt.in), &c)
			if err == nil {
				t.Fatal("unmarshal succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
