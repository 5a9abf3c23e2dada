package sign

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/build"
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/marker"
	"github.com/lykke-go/coloredcoin/money"
)

func mustPrivKey(t *testing.T, seed byte) *btcec.PrivateKey {
	t.Helper()
	var b [32]byte
	b[31] = seed
	priv, _ := btcec.PrivKeyFromBytes(b[:])
	return priv
}

func p2pkhScript(t *testing.T, priv *btcec.PrivateKey, params *chaincfg.Params) []byte {
	t.Helper()
	hash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	addr, err := btcutil.NewAddressPubKeyHash(hash, params)
	if err != nil {
		t.Fatalf("address: %s", err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatalf("pkscript: %s", err)
	}
	return script
}

func verifyInput(t *testing.T, tx *wire.MsgTx, idx int, pkScript []byte, value int64) {
	t.Helper()
	engine, err := txscript.NewEngine(pkScript, tx, idx, txscript.StandardVerifyFlags, nil, nil, value)
	if err != nil {
		t.Fatalf("new engine: %s", err)
	}
	if err := engine.Execute(); err != nil {
		t.Fatalf("script did not verify: %s", err)
	}
}

func TestSignPayToPubKeyHash(t *testing.T) {
	params := &chaincfg.MainNetParams
	priv := mustPrivKey(t, 1)
	pkScript := p2pkhScript(t, priv, params)

	var h chainhash.Hash
	h[0] = 7
	op := wire.OutPoint{Hash: h, Index: 0}
	c := coin.NewPlainCoin(op, btcutil.Amount(100000), pkScript)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&op, nil, nil))
	tx.AddTxOut(wire.NewTxOut(90000, []byte{0x51}))

	ctx := build.NewContext(nil, marker.TagColored, marker.Version1, money.NativeMoney(546), 1000)
	ctx.Tx = tx
	ctx.RegisterCoins(c)

	s := New(params, priv)
	if err := s.Sign(ctx); err != nil {
		t.Fatalf("sign: %s", err)
	}
	if len(tx.TxIn[0].SignatureScript) == 0 {
		t.Fatalf("expected a non-empty signature script")
	}
	verifyInput(t, tx, 0, pkScript, int64(c.Value()))
}

func TestSignMissingCoin(t *testing.T) {
	var h chainhash.Hash
	h[0] = 9
	op := wire.OutPoint{Hash: h, Index: 0}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&op, nil, nil))

	ctx := build.NewContext(nil, marker.TagColored, marker.Version1, money.NativeMoney(546), 1000)
	ctx.Tx = tx

	s := New(&chaincfg.MainNetParams, mustPrivKey(t, 2))
	err := s.Sign(ctx)
	if err == nil {
		t.Fatalf("expected an error for an unresolvable coin")
	}
	if _, ok := err.(*build.ErrNotFound); !ok {
		t.Fatalf("expected *build.ErrNotFound, got %T: %v", err, err)
	}
}

func TestSignPayToScriptHashMultisig(t *testing.T) {
	params := &chaincfg.MainNetParams
	priv1 := mustPrivKey(t, 3)
	priv2 := mustPrivKey(t, 4)

	redeem, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_2).
		AddData(priv1.PubKey().SerializeCompressed()).
		AddData(priv2.PubKey().SerializeCompressed()).
		AddOp(txscript.OP_2).
		AddOp(txscript.OP_CHECKMULTISIG).
		Script()
	if err != nil {
		t.Fatalf("redeem script: %s", err)
	}
	scriptHash := btcutil.Hash160(redeem)
	addr, err := btcutil.NewAddressScriptHashFromHash(scriptHash, params)
	if err != nil {
		t.Fatalf("address: %s", err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatalf("pkscript: %s", err)
	}

	var h chainhash.Hash
	h[0] = 11
	op := wire.OutPoint{Hash: h, Index: 0}
	base := coin.NewPlainCoin(op, btcutil.Amount(100000), pkScript)
	sc, err := coin.NewScriptCoin(base, redeem, scriptHash, btcutil.Hash160)
	if err != nil {
		t.Fatalf("script coin: %s", err)
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&op, nil, nil))
	tx.AddTxOut(wire.NewTxOut(90000, []byte{0x51}))

	ctx := build.NewContext(nil, marker.TagColored, marker.Version1, money.NativeMoney(546), 1000)
	ctx.Tx = tx
	ctx.RegisterCoins(sc)

	s1 := New(params, priv1)
	if err := s1.Sign(ctx); err != nil {
		t.Fatalf("sign with key 1: %s", err)
	}
	partial := tx.Copy()

	tx.TxIn[0].SignatureScript = nil
	s2 := New(params, priv2)
	if err := s2.Sign(ctx); err != nil {
		t.Fatalf("sign with key 2: %s", err)
	}

	pkScriptOf := func(outpoint wire.OutPoint) ([]byte, bool) {
		if outpoint == op {
			return pkScript, true
		}
		return nil, false
	}
	combined, err := CombineSignatures(params, pkScriptOf, tx, partial)
	if err != nil {
		t.Fatalf("combine: %s", err)
	}
	verifyInput(t, combined, 0, pkScript, int64(sc.Value()))
}
