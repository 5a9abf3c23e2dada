package build

import (
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/marker"
	"github.com/lykke-go/coloredcoin/money"
	"github.com/lykke-go/coloredcoin/selector"
)

func testOutpoint(idx uint32) wire.OutPoint {
	var h chainhash.Hash
	h[0] = byte(idx + 1)
	return wire.OutPoint{Hash: h, Index: idx}
}

func rngSelect(rnd *rand.Rand) SelectFunc {
	return func(candidates []selector.Coin, target money.Money) ([]selector.Coin, error) {
		return selector.Select(candidates, target, rnd)
	}
}

func TestBuildSimpleNativeSend(t *testing.T) {
	g := NewGroup("main")
	changeScript := []byte{0x76, 0xa9, 0x01}
	g.SetChangeScript(ChangeUncolored, changeScript)

	c1 := coin.NewPlainCoin(testOutpoint(0), btcutil.Amount(100000), []byte{0x51})
	g.AddCoins(c1)

	recipientScript := []byte{0x76, 0xa9, 0x02}
	g.QueueNative(SendNative(recipientScript, money.NativeMoney(50000), true, false))
	g.QueueNative(SendFees(money.NativeMoney(1000)))

	ctx := NewContext(nil, marker.TagColored, marker.Version1, money.NativeMoney(546), 1000)
	rnd := rand.New(rand.NewSource(1))
	if err := Build(ctx, []*Group{g}, rngSelect(rnd)); err != nil {
		t.Fatalf("build: %s", err)
	}

	if len(ctx.Tx.TxIn) != 1 {
		t.Fatalf("expected 1 input, got %d", len(ctx.Tx.TxIn))
	}
	if ctx.Tx.TxIn[0].PreviousOutPoint != c1.Outpoint() {
		t.Fatalf("expected input to spend the registered coin")
	}

	var totalOut int64
	for _, out := range ctx.Tx.TxOut {
		totalOut += out.Value
	}
	if totalOut >= int64(c1.Value()) {
		t.Fatalf("expected outputs to be less than input value (fee consumed), got %d vs %d", totalOut, c1.Value())
	}

	foundRecipient := false
	for _, out := range ctx.Tx.TxOut {
		if out.Value == 50000 {
			foundRecipient = true
		}
	}
	if !foundRecipient {
		t.Fatalf("expected a 50000-sat recipient output")
	}
}

func TestBuildInsufficientFunds(t *testing.T) {
	g := NewGroup("main")
	g.SetChangeScript(ChangeUncolored, []byte{0x76, 0xa9, 0x01})
	c1 := coin.NewPlainCoin(testOutpoint(0), btcutil.Amount(100), []byte{0x51})
	g.AddCoins(c1)
	g.QueueNative(SendNative([]byte{0x76, 0xa9, 0x02}, money.NativeMoney(100000), false, false))

	ctx := NewContext(nil, marker.TagColored, marker.Version1, money.NativeMoney(546), 1000)
	rnd := rand.New(rand.NewSource(2))
	err := Build(ctx, []*Group{g}, rngSelect(rnd))
	if err == nil {
		t.Fatalf("expected insufficient-funds error")
	}
	if _, ok := err.(*ErrInsufficientFunds); !ok {
		t.Fatalf("expected *ErrInsufficientFunds, got %T: %v", err, err)
	}
}

func TestBuildColoredSendWritesMarker(t *testing.T) {
	g := NewGroup("main")
	g.SetChangeScript(ChangeUncolored, []byte{0x76, 0xa9, 0x01})
	g.SetChangeScript(ChangeColored, []byte{0x76, 0xa9, 0x03})

	assetID := money.AssetIDFromScript([]byte("issuer"))
	bearer := coin.NewPlainCoin(testOutpoint(1), btcutil.Amount(546), []byte{0x51})
	colored := coin.NewColoredCoin(bearer, assetID, 100)
	g.AddCoins(colored)

	funding := coin.NewPlainCoin(testOutpoint(2), btcutil.Amount(100000), []byte{0x52})
	g.AddCoins(funding)

	g.QueueAsset(assetID, SendAsset([]byte{0x76, 0xa9, 0x04}, money.NewAssetMoney(assetID, 40)))

	ctx := NewContext(nil, marker.TagColored, marker.Version1, money.NativeMoney(546), 1000)
	rnd := rand.New(rand.NewSource(3))
	if err := Build(ctx, []*Group{g}, rngSelect(rnd)); err != nil {
		t.Fatalf("build: %s", err)
	}

	idx, m, err := marker.Locate(ctx.Tx)
	if err != nil {
		t.Fatalf("locate marker: %s", err)
	}
	if idx != ctx.MarkerIndex {
		t.Fatalf("marker located at %d, context tracked %d", idx, ctx.MarkerIndex)
	}
	if len(m.Quantities) == 0 {
		t.Fatalf("expected at least one recorded quantity")
	}
}
