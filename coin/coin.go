// Package coin implements the coin variants of spec §3: an immutable
// reference to a previously created output, borrowed (never owned or
// mutated) by the builder for the lifetime of one build session.
//
// The outpoint+value+script wrapper shape is grounded on
// internal/storage/utxo.go's Utxo type from the teacher repo (there
// wrapping a ledger.ShelleyTransactionInput + TransactionOutput pair;
// here re-expressed over wire.OutPoint/wire.TxOut).
package coin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// Coin is the common contract every coin variant satisfies. Coins are
// never mutated by the builder (spec §5): all methods are read-only.
type Coin interface {
	// Outpoint identifies the previously created output this coin
	// references.
	Outpoint() wire.OutPoint
	// Value is the native-currency amount carried by this coin. For a
	// colored coin this is the bearer dust, not the asset quantity
	// (spec §3 invariant: "a colored coin's bearer amount is the
	// native-currency dust it carries").
	Value() btcutil.Amount
	// PkScript is the output script locking this coin.
	PkScript() []byte
}

// PlainCoin is an uncolored, unwrapped output (spec: "a plain coin
// (outpoint + value + script)").
type PlainCoin struct {
	OutPoint wire.OutPoint
	Amount   btcutil.Amount
	Script   []byte
}

func NewPlainCoin(op wire.OutPoint, amount btcutil.Amount, script []byte) PlainCoin {
	return PlainCoin{OutPoint: op, Amount: amount, Script: script}
}

func (c PlainCoin) Outpoint() wire.OutPoint { return c.OutPoint }
func (c PlainCoin) Value() btcutil.Amount   { return c.Amount }
func (c PlainCoin) PkScript() []byte        { return c.Script }

func (c PlainCoin) String() string {
	return fmt.Sprintf("PlainCoin(%s:%d, %s)", c.OutPoint.Hash, c.OutPoint.Index, c.Amount)
}

// ScriptCoin is a plain coin plus a redeem script whose hash matches
// the output's script (spec: "a script-coin (plain coin plus a redeem
// script whose hash matches the output's script)"). Used for
// pay-to-script-hash spends, including P2SH-wrapped multisig and
// P2SH-wrapped colored-coin bearer outputs.
type ScriptCoin struct {
	PlainCoin
	Redeem []byte
}

// NewScriptCoin wraps a plain coin with its redeem script. hashFn
// computes the script hash used by the output's script template (e.g.
// btcutil.Hash160 for P2SH); the caller supplies it rather than this
// package assuming a single template, since a redeem script may also
// back a segwit v0 P2WSH-in-P2SH output with a different hash.
func NewScriptCoin(
	base PlainCoin,
	redeem []byte,
	scriptHash []byte,
	hashFn func([]byte) []byte,
) (ScriptCoin, error) {
	got := hashFn(redeem)
	if len(got) != len(scriptHash) {
		return ScriptCoin{}, fmt.Errorf("coin: redeem script hash length mismatch")
	}
	for i := range got {
		if got[i] != scriptHash[i] {
			return ScriptCoin{}, fmt.Errorf("coin: redeem script does not match output script hash")
		}
	}
	return ScriptCoin{PlainCoin: base, Redeem: redeem}, nil
}

func (c ScriptCoin) RedeemScript() []byte { return c.Redeem }
