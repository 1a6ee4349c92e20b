package lxtax

import (
	"testing"
	"time"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		in   string
		want Option
		err  bool
	}{
		{"2023-01-27C10000", NewCall(P("10000"), date("2023-01-27T21:00:00Z")), false},
		{"2023-01-27p32500", NewPut(P("32500"), date("2023-01-27T21:00:00Z")), false},
		{"2023-01-27X10000", Option{}, true},
		{"garbage", Option{}, true},
		{"2023-01-27C", Option{}, true},
	}
	for _, tt := range tests {
		got, err := ParseOption(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseOption(%q) error = %v, want err %v", tt.in, err, tt.err)
			continue
		}
		if err == nil && (got.PC != tt.want.PC || !got.Strike.Equal(tt.want.Strike) || !got.Expiry.Equal(tt.want.Expiry)) {
			t.Errorf("ParseOption(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestOptionMoneyness(t *testing.T) {
	expiry := date("2022-06-17T21:00:00Z")
	call := NewCall(P("30000"), expiry)
	put := NewPut(P("30000"), expiry)

	if !call.InTheMoney(P("35000")) || call.InTheMoney(P("25000")) {
		t.Error("call moneyness wrong")
	}
	if !put.InTheMoney(P("25000")) || put.InTheMoney(P("35000")) {
		t.Error("put moneyness wrong")
	}
	// at the money counts as in
	if !call.InTheMoney(P("30000")) || !put.InTheMoney(P("30000")) {
		t.Error("at-the-money should count as in")
	}

	if got := call.IntrinsicValue(P("35000")); !got.Equal(P("5000")) {
		t.Errorf("call intrinsic = %s", got)
	}
	if got := put.IntrinsicValue(P("35000")); !got.Equal(P("-5000")) {
		t.Errorf("put intrinsic = %s", got)
	}
}

func TestOptionYearsToExpiry(t *testing.T) {
	expiry := date("2023-01-01T00:00:00Z")
	opt := NewCall(P("10000"), expiry)

	if got := opt.YearsToExpiry(expiry.Add(-365 * 24 * time.Hour)); got != 1 {
		t.Errorf("a year out = %v", got)
	}
	if got := opt.YearsToExpiry(expiry.Add(time.Minute)); got != 0 {
		t.Errorf("after expiry = %v", got)
	}
	mustPanic(t, "arr after expiry", func() {
		opt.ARR(expiry, P("20000"), P("100"))
	})
}

func TestOptionCSVName(t *testing.T) {
	opt := NewCall(P("40000"), date("2022-02-04T21:00:00Z"))
	if got := opt.CSVName(UnderlyingBtc); got != "BTC-Mini-04FEB2022-40000-Call" {
		t.Errorf("CSVName = %q", got)
	}
}
