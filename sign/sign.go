// Package sign attaches signatures to a built transaction (spec §4.6).
// Template dispatch for pay-to-pubkey, pay-to-pubkey-hash, multisig
// n-of-m and pay-to-script-hash spends is delegated to
// btcsuite/btcd/txscript's SignTxOutput, the same engine
// daglabs-btcd/domain/txscript/sign.go wraps; this package supplies the
// coin/key lookup precedence, P2SH redeem-script recovery and stealth
// spend-key uncovering that sit around it.
package sign

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/build"
	"github.com/lykke-go/coloredcoin/coin"
)

// KeyFinder is the caller-supplied fallback in the key lookup
// precedence (spec §4.6: "builder's key set -> context-additional keys
// -> caller key-finder callback").
type KeyFinder func(addr btcutil.Address) (*btcec.PrivateKey, bool)

// RedeemFinder is the caller-supplied fallback for P2SH redeem-script
// recovery when neither a coin.ScriptCoin nor an existing scriptSig on
// the input carries one (spec §4.6: "redeem-script recovery").
type RedeemFinder func(addr btcutil.Address) ([]byte, bool)

// CoinFinder supplies the coin spent by an input when it is not
// already registered on the context (spec §4.6 leans on the same
// find-coin surface the verifier uses).
type CoinFinder func(wire.OutPoint) (coin.Coin, bool)

// Signer signs every input of a built transaction in place.
type Signer struct {
	Params     *chaincfg.Params
	Keys       []*btcec.PrivateKey
	KeyFinder  KeyFinder
	RedeemFor  RedeemFinder
	HashType   txscript.SigHashType
	CoinFinder CoinFinder
}

// New builds a Signer over the given private keys, defaulting to
// SigHashAll.
func New(params *chaincfg.Params, keys ...*btcec.PrivateKey) *Signer {
	return &Signer{Params: params, Keys: keys, HashType: txscript.SigHashAll}
}

// UncoverStealth derives the spend keys a stealth coin resolves to
// under scanPriv and candidateSpendKeys, and, on success, registers
// them on ctx so later signing sees them as context-additional keys
// (spec §4.6: "stealth spend-key uncovering via ECDH").
func UncoverStealth(ctx *build.Context, sc coin.StealthCoin, scanPriv *btcec.PrivateKey, candidateSpendKeys []*btcec.PrivateKey) error {
	uncovered, err := sc.UncoverSpendKeys(scanPriv, candidateSpendKeys)
	if err != nil {
		return err
	}
	ctx.AddAdditionalKeys(uncovered...)
	return nil
}

// Sign signs every input of ctx.Tx in place (spec §4.3: "if signing was
// requested, sign every input in place"). A coin is looked up first on
// the context's registered coins, then via s.CoinFinder; if neither
// resolves it, Sign fails with build.ErrNotFound.
func (s *Signer) Sign(ctx *build.Context) error {
	for i, txIn := range ctx.Tx.TxIn {
		op := txIn.PreviousOutPoint
		c, ok := ctx.FindCoin(op)
		if !ok && s.CoinFinder != nil {
			c, ok = s.CoinFinder(op)
		}
		if !ok {
			return &build.ErrNotFound{Kind: "coin", Outpoint: op.String(), Input: i}
		}

		pkScript := bearerScript(c)
		sigScript, err := txscript.SignTxOutput(
			s.Params, ctx.Tx, i, pkScript, s.HashType,
			s.keyDB(ctx), s.scriptDB(ctx, txIn.SignatureScript), txIn.SignatureScript,
		)
		if err != nil {
			return fmt.Errorf("sign: input %d (%s): %w", i, op, err)
		}
		txIn.SignatureScript = sigScript
	}
	return nil
}

// bearerScript returns the locking script a coin's signature must
// satisfy, unwrapping colored/issuance coins down to their bearer.
func bearerScript(c coin.Coin) []byte {
	return c.PkScript()
}

func (s *Signer) keyDB(ctx *build.Context) txscript.KeyDB {
	return txscript.KeyClosure(func(addr btcutil.Address) (*btcec.PrivateKey, bool, error) {
		for _, k := range s.Keys {
			if addressMatchesKey(addr, k) {
				return k, true, nil
			}
		}
		for _, k := range ctx.AdditionalKeys {
			if addressMatchesKey(addr, k) {
				return k, true, nil
			}
		}
		if s.KeyFinder != nil {
			if k, found := s.KeyFinder(addr); found {
				return k, true, nil
			}
		}
		return nil, false, fmt.Errorf("sign: no key for address %s", addr.EncodeAddress())
	})
}

// addressMatchesKey reports whether k is the private half of addr,
// under either a pay-to-pubkey-hash or a bare pay-to-pubkey address.
func addressMatchesKey(addr btcutil.Address, k *btcec.PrivateKey) bool {
	pub := k.PubKey().SerializeCompressed()
	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return bytes.Equal(btcutil.Hash160(pub), a.Hash160()[:])
	case *btcutil.AddressPubKey:
		return bytes.Equal(pub, a.ScriptAddress())
	}
	return false
}

// scriptDB recovers a P2SH redeem script in the precedence order spec
// §4.6 names: a registered script-coin wrapper, then the existing
// (possibly partially-signed) scriptSig on this input, then a caller
// redeem-finder callback.
func (s *Signer) scriptDB(ctx *build.Context, existingScriptSig []byte) txscript.ScriptDB {
	return txscript.ScriptClosure(func(addr btcutil.Address) ([]byte, error) {
		sh, ok := addr.(*btcutil.AddressScriptHash)
		if !ok {
			return nil, fmt.Errorf("sign: %T is not a script-hash address", addr)
		}
		if redeem, ok := redeemFromCoins(ctx, sh); ok {
			return redeem, nil
		}
		if redeem, ok := redeemFromScriptSig(existingScriptSig, sh); ok {
			return redeem, nil
		}
		if s.RedeemFor != nil {
			if redeem, ok := s.RedeemFor(addr); ok {
				return redeem, nil
			}
		}
		return nil, fmt.Errorf("sign: no redeem script for %s", addr.EncodeAddress())
	})
}

// redeemFromScriptSig recovers a redeem script already embedded in a
// partially-signed scriptSig's final pushed item, for a second
// cooperating signer who has no script-coin registered for this input
// (spec §4.6: "recover the redeem script ... by parsing the existing
// scriptSig").
func redeemFromScriptSig(scriptSig []byte, sh *btcutil.AddressScriptHash) ([]byte, bool) {
	if len(scriptSig) == 0 {
		return nil, false
	}
	pushes, err := txscript.PushedData(scriptSig)
	if err != nil || len(pushes) == 0 {
		return nil, false
	}
	redeem := pushes[len(pushes)-1]
	if bytes.Equal(btcutil.Hash160(redeem), sh.Hash160()[:]) {
		return redeem, true
	}
	return nil, false
}

// redeemFromCoins recovers a P2SH redeem script from any ScriptCoin
// registered on the context whose output script hashes to sh (spec
// §4.6: "script-coin wrapper" is the first redeem-recovery source).
func redeemFromCoins(ctx *build.Context, sh *btcutil.AddressScriptHash) ([]byte, bool) {
	for _, c := range ctx.Coins() {
		sc, ok := c.(coin.ScriptCoin)
		if !ok {
			continue
		}
		if bytes.Equal(btcutil.Hash160(sc.RedeemScript()), sh.Hash160()[:]) {
			return sc.RedeemScript(), true
		}
	}
	return nil, false
}
