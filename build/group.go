package build

import (
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/money"
)

// Intent is a caller-declared action against the build context. It
// returns its contribution to the current pass's funding target (spec
// §4.3: "target ← Σ intent(ctx) for intent in intents") — native
// amount during the native pass, asset quantity during a per-asset
// pass. Any native bearer cost an intent's own new output implies is
// folded straight into ctx.FeeAccumulator as a side effect rather than
// returned, since that cost is recovered by a later native-pass
// intent, not by the pass the intent itself runs in.
type Intent func(ctx *Context) (money.Money, error)

// Group is one funding unit processed by the planner in order (spec
// §3: "Builder group"). A build is a sequence of groups, each with its
// own coin pool, change scripts, and intent lists.
type Group struct {
	Name string

	Coins []coin.Coin

	// ChangeScripts maps a ChangeType to the output script that
	// receives material change of that type.
	ChangeScripts map[ChangeType][]byte

	// CoverOnly, if non-nil, pins the funding target to exactly
	// CoverOnly + change-amount rather than the sum of intents (spec
	// §4.3: "if cover-only is set: target ← cover-only + change-amount").
	CoverOnly money.Money

	IssuanceIntents []Intent
	NativeIntents   []Intent
	AssetIntents    map[money.AssetID][]Intent
	assetOrder      []money.AssetID
}

// NewGroup creates an empty group with the implicit SetChange intent
// already queued as the first native intent (spec §4.3: "The first
// intent in every group's native list is the implicit SetChange").
func NewGroup(name string) *Group {
	g := &Group{
		Name:          name,
		ChangeScripts: make(map[ChangeType][]byte),
		AssetIntents:  make(map[money.AssetID][]Intent),
	}
	g.NativeIntents = append(g.NativeIntents, setChangeIntent(g))
	return g
}

// AddCoins makes coins selectable within this group.
func (g *Group) AddCoins(coins ...coin.Coin) {
	g.Coins = append(g.Coins, coins...)
}

// SetChangeScript configures the output script used for material
// change of the given type.
func (g *Group) SetChangeScript(t ChangeType, script []byte) {
	g.ChangeScripts[t] = script
}

// QueueNative appends a native-pass intent.
func (g *Group) QueueNative(i Intent) {
	g.NativeIntents = append(g.NativeIntents, i)
}

// QueueIssuance appends an issuance-pass intent.
func (g *Group) QueueIssuance(i Intent) {
	g.IssuanceIntents = append(g.IssuanceIntents, i)
}

// QueueAsset appends a per-asset intent, queuing the implicit
// SetColoredChange intent the first time this asset-id is seen (spec
// §4.3: "the first intent in every per-asset list is SetColoredChange").
func (g *Group) QueueAsset(id money.AssetID, i Intent) {
	if _, ok := g.AssetIntents[id]; !ok {
		g.assetOrder = append(g.assetOrder, id)
		g.AssetIntents[id] = []Intent{setColoredChangeIntent(g, id)}
	}
	g.AssetIntents[id] = append(g.AssetIntents[id], i)
}

// AssetOrder returns asset-ids in the order their per-asset lists were
// first populated (spec §5: "within the per-asset pass, assets are
// processed in insertion order of the per-asset map").
func (g *Group) AssetOrder() []money.AssetID {
	return append([]money.AssetID{}, g.assetOrder...)
}

// ColoredCoinsOf filters the group's coins to colored coins of id.
func (g *Group) ColoredCoinsOf(id money.AssetID) []coin.Coin {
	var out []coin.Coin
	for _, c := range g.Coins {
		if cc, ok := c.(coin.ColoredCoin); ok && cc.AssetID == id {
			out = append(out, c)
		}
	}
	return out
}

// PlainCoins returns the group's uncolored coins (issuance and colored
// coins excluded).
func (g *Group) PlainCoins() []coin.Coin {
	var out []coin.Coin
	for _, c := range g.Coins {
		switch c.(type) {
		case coin.ColoredCoin, coin.IssuanceCoin:
			continue
		default:
			out = append(out, c)
		}
	}
	return out
}

// IssuanceCoinFor finds an issuance coin in the group matching id.
func (g *Group) IssuanceCoinFor(id money.AssetID) (coin.IssuanceCoin, bool) {
	for _, c := range g.Coins {
		if ic, ok := c.(coin.IssuanceCoin); ok && ic.AssetID == id {
			return ic, true
		}
	}
	return coin.IssuanceCoin{}, false
}
