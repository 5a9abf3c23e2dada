package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/build"
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/money"
)

// fixture is the on-disk JSON shape cmd/txbuild drives a build from:
// one or more funding groups, each with its own coins, change scripts
// and intents (spec §3/§4.3/§4.4), plus an optional flat key list for
// signing.
type fixture struct {
	MarkerTag     string        `json:"markerTag"`
	MarkerVersion uint16        `json:"markerVersion"`
	NativeDust    int64         `json:"nativeDust"`
	Groups        []fixtureGroup `json:"groups"`
	Keys          []string      `json:"keys"`
}

type fixtureGroup struct {
	Name                string          `json:"name"`
	ChangeScript        string          `json:"changeScript"`
	ColoredChangeScript string          `json:"coloredChangeScript"`
	Coins               []fixtureCoin  `json:"coins"`
	ColoredCoins         []fixtureColoredCoin `json:"coloredCoins"`
	Intents              []fixtureIntent `json:"intents"`
}

type fixtureCoin struct {
	Txid   string `json:"txid"`
	Index  uint32 `json:"index"`
	Value  int64  `json:"value"`
	Script string `json:"script"`
}

type fixtureColoredCoin struct {
	fixtureCoin
	AssetID  string `json:"assetId"`
	Quantity uint64 `json:"quantity"`
}

type fixtureIntent struct {
	Type           string `json:"type"`
	Script         string `json:"script"`
	Amount         int64  `json:"amount"`
	DustPrevention bool   `json:"dustPrevention"`
	AssetID        string `json:"assetId"`
	Quantity       uint64 `json:"quantity"`
}

func loadFixture(data []byte) (*fixture, error) {
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}

func (fc fixtureCoin) outpoint() (wire.OutPoint, error) {
	h, err := chainhash.NewHashFromStr(fc.Txid)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("txid %q: %w", fc.Txid, err)
	}
	return wire.OutPoint{Hash: *h, Index: fc.Index}, nil
}

func (fc fixtureCoin) script() ([]byte, error) {
	return hex.DecodeString(fc.Script)
}

func (fc fixtureCoin) plainCoin() (coin.PlainCoin, error) {
	op, err := fc.outpoint()
	if err != nil {
		return coin.PlainCoin{}, err
	}
	script, err := fc.script()
	if err != nil {
		return coin.PlainCoin{}, fmt.Errorf("script: %w", err)
	}
	return coin.NewPlainCoin(op, btcutil.Amount(fc.Value), script), nil
}

func assetIDFromHex(s string) (money.AssetID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return money.AssetID{}, err
	}
	if len(b) != money.AssetIDSize {
		return money.AssetID{}, fmt.Errorf("asset id %q: want %d bytes, got %d", s, money.AssetIDSize, len(b))
	}
	return money.AssetIDFromBytes(b), nil
}

// buildGroup translates a fixture group into a *build.Group, queuing
// its coins and intents (spec §4.4 intent factories).
func buildGroup(fg fixtureGroup) (*build.Group, error) {
	g := build.NewGroup(fg.Name)

	if fg.ChangeScript != "" {
		script, err := hex.DecodeString(fg.ChangeScript)
		if err != nil {
			return nil, fmt.Errorf("group %s: change script: %w", fg.Name, err)
		}
		g.SetChangeScript(build.ChangeUncolored, script)
	}
	if fg.ColoredChangeScript != "" {
		script, err := hex.DecodeString(fg.ColoredChangeScript)
		if err != nil {
			return nil, fmt.Errorf("group %s: colored change script: %w", fg.Name, err)
		}
		g.SetChangeScript(build.ChangeColored, script)
	}

	for _, fc := range fg.Coins {
		pc, err := fc.plainCoin()
		if err != nil {
			return nil, fmt.Errorf("group %s: coin: %w", fg.Name, err)
		}
		g.AddCoins(pc)
	}
	for _, cc := range fg.ColoredCoins {
		bearer, err := cc.plainCoin()
		if err != nil {
			return nil, fmt.Errorf("group %s: colored coin: %w", fg.Name, err)
		}
		id, err := assetIDFromHex(cc.AssetID)
		if err != nil {
			return nil, fmt.Errorf("group %s: colored coin asset id: %w", fg.Name, err)
		}
		g.AddCoins(coin.NewColoredCoin(bearer, id, cc.Quantity))
	}

	for _, fi := range fg.Intents {
		if err := queueIntent(g, fi); err != nil {
			return nil, fmt.Errorf("group %s: intent %s: %w", fg.Name, fi.Type, err)
		}
	}
	return g, nil
}

func queueIntent(g *build.Group, fi fixtureIntent) error {
	switch fi.Type {
	case "send-native":
		script, err := hex.DecodeString(fi.Script)
		if err != nil {
			return err
		}
		g.QueueNative(build.SendNative(script, money.NativeMoney(fi.Amount), fi.DustPrevention, false))
	case "send-fees":
		g.QueueNative(build.SendFees(money.NativeMoney(fi.Amount)))
	case "send-asset":
		script, err := hex.DecodeString(fi.Script)
		if err != nil {
			return err
		}
		id, err := assetIDFromHex(fi.AssetID)
		if err != nil {
			return err
		}
		g.QueueAsset(id, build.SendAsset(script, money.NewAssetMoney(id, fi.Quantity)))
	case "send-asset-to-exchange":
		script, err := hex.DecodeString(fi.Script)
		if err != nil {
			return err
		}
		id, err := assetIDFromHex(fi.AssetID)
		if err != nil {
			return err
		}
		g.QueueAsset(id, build.SendAssetToExchange(script, money.NewAssetMoney(id, fi.Quantity)))
	default:
		return fmt.Errorf("unknown intent type %q", fi.Type)
	}
	return nil
}
