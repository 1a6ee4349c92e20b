package lxtax

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// TxDB holds the raw bitcoin transactions behind the user's deposits,
// keyed by txid. It is the bridge between exchange deposit records and
// the wallet coins they were funded with.
type TxDB struct {
	txs map[chainhash.Hash]*wire.MsgTx
}

// NewTxDB returns an empty transaction database.
func NewTxDB() *TxDB {
	return &TxDB{txs: make(map[chainhash.Hash]*wire.MsgTx)}
}

// Len reports the number of stored transactions.
func (db *TxDB) Len() int { return len(db.txs) }

// Add decodes and stores a raw transaction. The claimed txid must match
// the hash of the decoded bytes; a mismatch means the database entry was
// corrupted or recorded wrong, and poisons everything downstream.
func (db *TxDB) Add(txid, raw string) error {
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return fmt.Errorf("bad txid %q: %w", txid, err)
	}
	rawBytes, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("tx %s: bad raw hex: %w", txid, err)
	}
	tx := new(wire.MsgTx)
	if err := tx.Deserialize(bytes.NewReader(rawBytes)); err != nil {
		return fmt.Errorf("tx %s: undecodable: %w", txid, err)
	}
	if got := tx.TxHash(); got != *hash {
		return fmt.Errorf("tx recorded as %s actually hashes to %s", txid, got)
	}
	db.txs[*hash] = tx
	return nil
}

// Tx returns the stored transaction with the given txid, if any.
func (db *TxDB) Tx(hash chainhash.Hash) (*wire.MsgTx, bool) {
	tx, ok := db.txs[hash]
	return tx, ok
}

// FindTxOut resolves an outpoint against the stored transactions.
func (db *TxDB) FindTxOut(op wire.OutPoint) (*wire.TxOut, error) {
	tx, ok := db.txs[op.Hash]
	if !ok {
		return nil, fmt.Errorf("outpoint %s: transaction not on record", op)
	}
	if int(op.Index) >= len(tx.TxOut) {
		return nil, fmt.Errorf("outpoint %s: transaction has only %d outputs", op, len(tx.TxOut))
	}
	return tx.TxOut[op.Index], nil
}

// FindTxForDeposit locates the stored transaction funding a deposit: the
// one with an output paying the given amount to the given address.
// Exactly one transaction must match.
func (db *TxDB) FindTxForDeposit(address string, amount Quantity) (*wire.MsgTx, uint32, error) {
	if !amount.SameUnit(Sats(0)) {
		panic(fmt.Sprintf("deposit amount %s is not a bitcoin quantity", amount))
	}
	decoded, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams)
	if err != nil {
		return nil, 0, fmt.Errorf("deposit address %q: %w", address, err)
	}
	script, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, 0, fmt.Errorf("deposit address %q: %w", address, err)
	}

	var found *wire.MsgTx
	var foundVout uint32
	for _, tx := range db.txs {
		for vout, out := range tx.TxOut {
			if out.Value != amount.Int() || !bytes.Equal(out.PkScript, script) {
				continue
			}
			if found != nil {
				return nil, 0, fmt.Errorf("deposit of %s to %s matches both tx %s and tx %s",
					amount, address, found.TxHash(), tx.TxHash())
			}
			found = tx
			foundVout = uint32(vout)
		}
	}
	if found == nil {
		return nil, 0, fmt.Errorf("no transaction on record pays %s to %s", amount, address)
	}
	return found, foundVout, nil
}
