package lxtax

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/wire"
)

func TestConfigurationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lxtax.json")
	cfg := &Configuration{
		Year:   2021,
		APIKey: "secret",
		LXCSV:  []string{`Sell,"0.01, BTC",2021-04-14T21:00:00Z,2021-07-18T21:00:00Z,321.87,629.05,-307.18,Short-term,,,`},
	}
	cfg.RecordLot("abcd1234-00", LotInfo{
		Price: P("19000"),
		Date:  date("2020-12-01T00:00:00Z"),
	})
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfiguration(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Year != 2021 || loaded.APIKey != "secret" {
		t.Errorf("loaded %+v", loaded)
	}
	info, ok := loaded.Lots["abcd1234-00"]
	if !ok {
		t.Fatal("recorded lot lost in round trip")
	}
	if !info.Price.Equal(P("19000")) {
		t.Errorf("lot price = %s, want 19000.00", info.Price)
	}
	if !info.Date.Equal(date("2020-12-01T00:00:00Z")) {
		t.Errorf("lot date = %s", info.Date)
	}
}

func TestLoadConfigurationMissingYear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lxtax.json")
	if err := os.WriteFile(path, []byte(`{"api_key": "x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfiguration(path)
	if err == nil || !strings.Contains(err.Error(), "missing tax year") {
		t.Fatalf("err = %v, want missing tax year", err)
	}
}

func TestRecordTransactionValidates(t *testing.T) {
	cfg := &Configuration{Year: 2021}
	if err := cfg.RecordTransaction("beef", "00"); err == nil {
		t.Error("invalid transaction recorded")
	}
	if len(cfg.Transactions) != 0 {
		t.Errorf("rejected transaction still stored: %v", cfg.Transactions)
	}

	_, txid, raw := makeTx(t, newOutPoint(t, "11", 0),
		wire.NewTxOut(100000, addrScript(t, genesisAddr)))
	if err := cfg.RecordTransaction(txid, raw); err != nil {
		t.Fatal(err)
	}
	db, err := cfg.TransactionDB()
	if err != nil {
		t.Fatal(err)
	}
	if db.Len() != 1 {
		t.Errorf("TransactionDB holds %d txs, want 1", db.Len())
	}
}

func TestHistoricUnconfigured(t *testing.T) {
	cfg := &Configuration{Year: 2021}
	h, err := cfg.Historic()
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 0 {
		t.Errorf("unconfigured history has %d entries", h.Len())
	}
}

func TestPriceRefsFromEmbeddedLines(t *testing.T) {
	cfg := &Configuration{Year: 2021, LXCSV: []string{
		`Sell,"0.01, BTC",2021-04-14T21:00:00Z,2021-07-18T21:00:00Z,321.87,629.05,-307.18,Short-term,,,`,
		`Expired,"BTC Mini 2021-07-16 Put $32,000.00",2021-06-08T17:27:24Z,2021-07-16T22:00:00Z,0.00,171.00,-171.00,-1256-,,,`,
	}}
	refs, err := cfg.PriceRefs()
	if err != nil {
		t.Fatal(err)
	}
	// Only the spot line contributes references, one per date.
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	if !refs[0].Price.Equal(P("62905")) {
		t.Errorf("refs[0].Price = %s", refs[0].Price)
	}

	cfg.LXCSV = append(cfg.LXCSV, "not,a,tax,line")
	if _, err := cfg.PriceRefs(); err == nil {
		t.Error("malformed embedded line parsed")
	}
}

func TestRecordTaxCSV(t *testing.T) {
	const file = `Reference,Description,Date Acquired,Date Sold or Disposed of,Proceeds,Cost or other basis,Gain/(Loss),Short-term/Long-term,,,Note
Sell,"0.01, BTC",2021-04-14T21:00:00Z,2021-07-18T21:00:00Z,321.87,629.05,-307.18,Short-term,,,

Sell,"0.02, BTC",2021-05-01T21:00:00Z,2021-08-01T21:00:00Z,800.00,1000.00,-200.00,Short-term,,,
`
	cfg := &Configuration{Year: 2021}
	n, err := cfg.RecordTaxCSV(strings.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || len(cfg.LXCSV) != 2 {
		t.Fatalf("recorded %d lines, stored %d, want 2", n, len(cfg.LXCSV))
	}
	refs, err := cfg.PriceRefs()
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 4 {
		t.Fatalf("got %d refs, want 4", len(refs))
	}
	if !refs[2].Price.Equal(P("50000")) {
		t.Errorf("refs[2].Price = %s, want 50000.00", refs[2].Price)
	}

	// A file with a malformed data line is rejected outright.
	bad := "header\nSell,oops\n"
	if _, err := (&Configuration{Year: 2021}).RecordTaxCSV(strings.NewReader(bad)); err == nil {
		t.Error("malformed tax CSV recorded")
	}
}
