package lxtax

import (
	"strings"
	"testing"
	"time"
)

func TestHistoricThinsToHalfHours(t *testing.T) {
	h := new(Historic)
	base := date("2021-01-01T00:00:00Z")
	h.Record(base, P("29000"))
	h.Record(base.Add(10*time.Minute), P("29100")) // dropped, same half hour
	h.Record(base.Add(30*time.Minute), P("29200"))
	h.Record(base.Add(45*time.Minute), P("29300")) // dropped

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	if got := h.PriceAt(base.Add(20 * time.Minute)); !got.Equal(P("29000")) {
		t.Errorf("PriceAt +20m = %s, want the retained 29000", got)
	}
	if got := h.PriceAt(base.Add(2 * time.Hour)); !got.Equal(P("29200")) {
		t.Errorf("PriceAt +2h = %s, want 29200", got)
	}
}

func TestPriceAtBeforeHistory(t *testing.T) {
	h := new(Historic)
	h.Record(date("2021-01-01T00:00:00Z"), P("29000"))
	mustPanic(t, "PriceAt before first record", func() {
		h.PriceAt(date("2020-12-31T23:59:59Z"))
	})
}

func TestReadHistoricCSV(t *testing.T) {
	const dump = `1609459200,29000.50,1.2
1609459260,29010.00,0.4

1609462800,29500.00,2.0
`
	h, err := ReadHistoricCSV(strings.NewReader(dump))
	if err != nil {
		t.Fatal(err)
	}
	// The second sample lands one minute after the first and is thinned.
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	if got := h.PriceAt(date("2021-01-01T00:30:00Z")); !got.Equal(P("29000.50")) {
		t.Errorf("PriceAt = %s, want 29000.50", got)
	}
}

func TestReadHistoricCSVErrors(t *testing.T) {
	tests := []struct{ name, dump string }{
		{"missing price", "1609459200"},
		{"bad timestamp", "soon,29000.50,1.2"},
		{"bad price", "1609459200,cheap,1.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadHistoricCSV(strings.NewReader(tt.dump)); err == nil {
				t.Error("ReadHistoricCSV succeeded")
			}
		})
	}
}
