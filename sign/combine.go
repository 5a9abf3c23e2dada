package sign

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// PkScriptOf is consulted by CombineSignatures when no coin is
// available for an input; absent that, the output script is deduced
// from the existing scriptSig (spec §4.6: "Combine-signatures ...
// deduce output script from scriptSig when coin absent").
type PkScriptOf func(wire.OutPoint) ([]byte, bool)

// CombineSignatures folds copies of the same transaction, each signed
// independently (e.g. by different multisig cosigners), into one,
// merging every input's scriptSig via the script engine (spec §4.6).
// txs must all reference the same inputs in the same order; the first
// copy is used as the base.
func CombineSignatures(params *chaincfg.Params, pkScriptOf PkScriptOf, txs ...*wire.MsgTx) (*wire.MsgTx, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("sign: combine-signatures needs at least one transaction")
	}
	base := txs[0].Copy()

	for _, next := range txs[1:] {
		if len(next.TxIn) != len(base.TxIn) {
			return nil, fmt.Errorf("sign: combine-signatures input count mismatch")
		}
		for i, in := range base.TxIn {
			pkScript, ok := pkScriptOf(in.PreviousOutPoint)
			if !ok {
				var err error
				pkScript, ok, err = deducePkScript(next.TxIn[i].SignatureScript)
				if err != nil {
					return nil, fmt.Errorf("sign: combine-signatures input %d: %w", i, err)
				}
				if !ok {
					return nil, fmt.Errorf("sign: combine-signatures input %d: no output script available", i)
				}
			}

			noKeys := txscript.KeyClosure(func(addr btcutil.Address) (*btcec.PrivateKey, bool, error) {
				return nil, false, fmt.Errorf("sign: combine-signatures does not sign, it only merges")
			})
			noScripts := txscript.ScriptClosure(func(addr btcutil.Address) ([]byte, error) {
				return nil, fmt.Errorf("sign: combine-signatures has no redeem scripts beyond those embedded in scriptSigs")
			})

			merged, err := txscript.SignTxOutput(
				params, base, i, pkScript, txscript.SigHashAll,
				noKeys, noScripts, next.TxIn[i].SignatureScript,
			)
			if err != nil {
				return nil, fmt.Errorf("sign: combine-signatures input %d: %w", i, err)
			}
			in.SignatureScript = merged
		}
	}
	return base, nil
}

// deducePkScript infers the spent output's locking script from a
// scriptSig, covering the two templates that embed enough information
// to do so: pay-to-pubkey-hash (push(sig) push(pubkey)) and
// pay-to-script-hash (... push(redeemScript)).
func deducePkScript(sigScript []byte) ([]byte, bool, error) {
	pushes, err := txscript.PushedData(sigScript)
	if err != nil {
		return nil, false, err
	}
	if len(pushes) == 0 {
		return nil, false, nil
	}
	last := pushes[len(pushes)-1]

	if len(pushes) == 2 && looksLikePubKey(last) {
		script, err := txscript.NewScriptBuilder().
			AddOp(txscript.OP_DUP).
			AddOp(txscript.OP_HASH160).
			AddData(btcutil.Hash160(last)).
			AddOp(txscript.OP_EQUALVERIFY).
			AddOp(txscript.OP_CHECKSIG).
			Script()
		return script, err == nil, err
	}

	// Otherwise assume the final push is a P2SH redeem script, the
	// other template rich enough to self-describe its output script.
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(last)).
		AddOp(txscript.OP_EQUAL).
		Script()
	return script, err == nil, err
}

func looksLikePubKey(b []byte) bool {
	return len(b) == 33 || len(b) == 65
}
