package build

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/money"
)

// Then opens a new group, appending it to groups (spec §6: "optionally
// call then to open a new group"). Groups are processed by Build in
// insertion order (spec §5).
func Then(groups []*Group, name string) ([]*Group, *Group) {
	g := NewGroup(name)
	return append(groups, g), g
}

// ContinueToBuild parses an existing serialized transaction into a
// fresh context so a caller can top it up with CoverTheRest (spec §6:
// "continue-to-build(existing-tx) + cover-the-rest to top up a partial
// transaction").
func ContinueToBuild(existing []byte, metadata MetadataSink, markerTag, markerVersion uint16, nativeDust money.NativeMoney, relayFeeRate int64) (*Context, error) {
	tx := wire.NewMsgTx(2)
	if err := tx.Deserialize(bytes.NewReader(existing)); err != nil {
		return nil, err
	}
	ctx := NewContext(metadata, markerTag, markerVersion, nativeDust, relayFeeRate)
	ctx.Tx = tx
	return ctx, nil
}

// CoverTheRest pins a group's funding target to cover-only + whatever
// change-amount the fixed point computes, instead of the sum of its
// intents (spec §4.3: "if cover-only is set: target ← cover-only +
// change-amount"). Typically used with ContinueToBuild to top up a
// partially-funded transaction to exactly the given native amount.
func CoverTheRest(g *Group, amount money.NativeMoney) {
	g.CoverOnly = amount
}

// Rand is the narrow randomness surface ShuffleIntents needs; the same
// shape the selector consumes, so both draw from one session generator
// (spec §5: "the session's pseudo-random generator").
type Rand interface {
	Intn(n int) int
}

// ShuffleIntents reorders the intents within each of a group's lists
// (native, per-asset, issuance) using rnd, preserving multiset
// membership while changing only order (spec §5, §8: "Shuffle
// preservation"). It never reorders groups or the structural passes
// themselves, and leaves each list's implicit leading SetChange /
// SetColoredChange intent in place.
func (g *Group) ShuffleIntents(rnd Rand) {
	shuffleTail(g.NativeIntents, rnd)
	shuffleAll(g.IssuanceIntents, rnd)
	for _, id := range g.assetOrder {
		shuffleTail(g.AssetIntents[id], rnd)
	}
}

// shuffleTail Fisher-Yates shuffles intents[1:], leaving the implicit
// leading SetChange/SetColoredChange intent fixed at index 0.
func shuffleTail(intents []Intent, rnd Rand) {
	if len(intents) <= 2 {
		return
	}
	for i := len(intents) - 1; i > 1; i-- {
		j := 1 + rnd.Intn(i)
		intents[i], intents[j] = intents[j], intents[i]
	}
}

// shuffleAll Fisher-Yates shuffles the whole list; issuance intents
// have no implicit leader.
func shuffleAll(intents []Intent, rnd Rand) {
	for i := len(intents) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		intents[i], intents[j] = intents[j], intents[i]
	}
}
