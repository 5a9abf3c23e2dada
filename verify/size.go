// Package verify estimates a built transaction's serialized size and
// checks it against policy and fee expectations (spec §4.5, §4.7).
package verify

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/build"
	"github.com/lykke-go/coloredcoin/coin"
)

// CoinFinder supplies the coin spent by an input; mirrors the
// build-context lookup the planner and signer use.
type CoinFinder func(wire.OutPoint) (coin.Coin, bool)

// dummySigLen is a worst-case DER-encoded ECDSA signature plus its
// trailing sighash-type byte (spec §4.5: "serialized dummy signature").
const dummySigLen = 72

// dummyPubKeyLen is a compressed public key's length (spec §4.5:
// "dummy-pubkey").
const dummyPubKeyLen = 33

// EstimateSize clones tx, clears its inputs to measure the base
// serialization length, then adds 41 bytes (outpoint 36 + sequence 4 +
// script-length 1) plus a dummy script-sig estimate per input (spec
// §4.5).
func EstimateSize(tx *wire.MsgTx, findCoin CoinFinder) (int, error) {
	base := tx.Copy()
	base.TxIn = nil
	size := base.SerializeSize()

	for i, in := range tx.TxIn {
		c, ok := findCoin(in.PreviousOutPoint)
		if !ok {
			return 0, &build.ErrNotFound{Kind: "coin", Outpoint: in.PreviousOutPoint.String(), Input: i}
		}
		size += 41 + dummyScriptSigSize(c)
	}
	return size, nil
}

// dummyScriptSigSize dispatches on the coin's shape: colored and
// issuance coins are estimated as their bearer plain coin (spec §4.5:
// "colored-coin inputs are estimated as their bearer plain coin");
// script coins add the redeem template's estimate plus a push of the
// redeem bytes.
func dummyScriptSigSize(c coin.Coin) int {
	bearer := bearerOf(c)
	if sc, ok := bearer.(coin.ScriptCoin); ok {
		redeem := sc.RedeemScript()
		return templateScriptSigSize(redeem) + pushDataSize(len(redeem))
	}
	return templateScriptSigSize(bearer.PkScript())
}

func bearerOf(c coin.Coin) coin.Coin {
	switch v := c.(type) {
	case coin.IssuanceCoin:
		return bearerOf(v.Bearer)
	case coin.ColoredCoin:
		return bearerOf(v.Bearer)
	default:
		return c
	}
}

// templateScriptSigSize estimates the dummy script-sig length for the
// output-script template pkScript decodes to (spec §4.5 table).
func templateScriptSigSize(pkScript []byte) int {
	class, _, requiredSigs, err := txscript.ExtractPkScriptAddrs(pkScript, &chaincfg.MainNetParams)
	if err != nil {
		return len(pkScript)
	}
	switch class {
	case txscript.PubKeyTy:
		return pushDataSize(dummySigLen)
	case txscript.PubKeyHashTy:
		return pushDataSize(dummySigLen) + pushDataSize(dummyPubKeyLen)
	case txscript.MultiSigTy:
		return requiredSigs * pushDataSize(dummySigLen)
	default:
		// Unknown template: the output's script length stands in as a
		// worst-case heuristic (spec §4.5).
		return len(pkScript)
	}
}

// pushDataSize is the overhead of a data push of n bytes, mirroring
// the ScriptBuilder opcode selection (direct push for n <= 75,
// OP_PUSHDATA1/2/4 beyond that).
func pushDataSize(n int) int {
	switch {
	case n == 0:
		return 1
	case n <= 75:
		return n + 1
	case n <= 0xff:
		return n + 2
	case n <= 0xffff:
		return n + 3
	default:
		return n + 5
	}
}
