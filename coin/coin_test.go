package coin

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/money"
)

func testOutpoint(idx uint32) wire.OutPoint {
	var h chainhash.Hash
	h[0] = byte(idx + 1)
	return wire.OutPoint{Hash: h, Index: idx}
}

func TestPlainCoinAccessors(t *testing.T) {
	op := testOutpoint(0)
	script := []byte{0x76, 0xa9}
	c := NewPlainCoin(op, btcutil.Amount(1000), script)

	if c.Outpoint() != op {
		t.Errorf("unexpected outpoint: %v", c.Outpoint())
	}
	if c.Value() != 1000 {
		t.Errorf("unexpected value: %v", c.Value())
	}
	if !bytes.Equal(c.PkScript(), script) {
		t.Errorf("unexpected script: %x", c.PkScript())
	}
}

func TestNewScriptCoinValidatesHash(t *testing.T) {
	redeem := []byte{0x51, 0x52, 0x53}
	hashFn := btcutil.Hash160
	scriptHash := hashFn(redeem)
	base := NewPlainCoin(testOutpoint(1), 546, nil)

	if _, err := NewScriptCoin(base, redeem, scriptHash, hashFn); err != nil {
		t.Fatalf("expected matching redeem script to validate: %s", err)
	}

	wrongHash := hashFn([]byte{0x00})
	if _, err := NewScriptCoin(base, redeem, wrongHash, hashFn); err == nil {
		t.Errorf("expected mismatched redeem script to fail validation")
	}
}

func TestColoredCoinBearerValue(t *testing.T) {
	bearer := NewPlainCoin(testOutpoint(2), 600, []byte{0x6a})
	id := money.AssetIDFromScript([]byte("issuer"))
	cc := NewColoredCoin(bearer, id, 40)

	if cc.Value() != 600 {
		t.Errorf("expected bearer value 600, got %v", cc.Value())
	}
	if cc.AssetMoney().Quantity != 40 {
		t.Errorf("expected quantity 40, got %v", cc.AssetMoney().Quantity)
	}
}

func TestIssuanceCoinDefinitionURL(t *testing.T) {
	bearer := NewPlainCoin(testOutpoint(3), 600, nil)
	id := money.AssetIDFromScript([]byte("issuer"))
	ic := NewIssuanceCoin(bearer, id, 1000, "https://example.com/asset.json")

	if !ic.HasDefinitionURL() {
		t.Errorf("expected definition URL to be present")
	}
}
