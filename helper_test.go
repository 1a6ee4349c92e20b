package lxtax

import (
	"strconv"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// itoa shortens building JSON fixtures from integer fields.
func itoa(n int64) string { return strconv.FormatInt(n, 10) }

// date is a helper for tests to build a UTC timestamp from a literal.
func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// day is a helper for tests to build midnight UTC from a literal.
func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// newOutPoint is a helper for tests to build an outpoint from a seed.
func newOutPoint(t *testing.T, seed string, index uint32) wire.OutPoint {
	t.Helper()
	var h chainhash.Hash
	copy(h[:], seed)
	return wire.OutPoint{Hash: h, Index: index}
}

// mustPanic asserts that fn panics.
func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic, got none", name)
		}
	}()
	fn()
}
