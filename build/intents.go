package build

import (
	"crypto/sha1"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/marker"
	"github.com/lykke-go/coloredcoin/money"
)

const opReturnOwnerColor = "color"
const opReturnOwnerStealth = "stealth"
const opReturnOwnerExchange = "exchange"

// setChangeIntent is the implicit native-pass leader: a no-op unless
// ctx.ChangeAmount (native) is material, in which case it adds a
// change output at ctx.ChangeAmount to the group's uncolored change
// script (spec §4.3).
func setChangeIntent(g *Group) Intent {
	return func(ctx *Context) (money.Money, error) {
		n, ok := ctx.ChangeAmount.(money.NativeMoney)
		if !ok || n == 0 {
			return money.NativeMoney(0), nil
		}
		script, ok := g.ChangeScripts[ChangeUncolored]
		if !ok {
			return nil, &ErrConfiguration{Reason: "missing uncolored change script for group " + g.Name}
		}
		ctx.Tx.AddTxOut(wire.NewTxOut(int64(n), script))
		return n, nil
	}
}

// setColoredChangeIntent is the implicit per-asset-list leader: adds a
// colored change output sized at its script's dust threshold and records
// the change quantity into the marker, with its bearer native cost
// folded into the fee accumulator (spec §4.3).
func setColoredChangeIntent(g *Group, id money.AssetID) Intent {
	return func(ctx *Context) (money.Money, error) {
		a, ok := ctx.ChangeAmount.(money.AssetMoney)
		if !ok || a.Quantity == 0 {
			return money.NewAssetMoney(id, 0), nil
		}
		script, ok := g.ChangeScripts[ChangeColored]
		if !ok {
			return nil, &ErrConfiguration{Reason: "missing colored change script for group " + g.Name}
		}
		dust := ctx.DustFor(script)
		ctx.Tx.AddTxOut(wire.NewTxOut(int64(dust), script))
		appendQuantity(ctx.ensureMarker(), a.Quantity)
		ctx.FeeAccumulator += dust
		return a, nil
	}
}

func appendQuantity(m *marker.Marker, q uint64) int {
	m.Quantities = append(m.Quantities, q)
	return len(m.Quantities) - 1
}

// SendNative appends a native output for amount to script, rerouting
// to fees when dust-prevention triggers (spec §4.4: "Send native").
// isNullData marks scripts that are never subject to dust rerouting
// (the script is a null-data/OP_RETURN carrier).
func SendNative(script []byte, amount money.NativeMoney, dustPrevention bool, isNullData bool) Intent {
	return func(ctx *Context) (money.Money, error) {
		if amount < 0 {
			return nil, fmt.Errorf("build: send-native amount must be >= 0")
		}
		if dustPrevention && !isNullData && amount < ctx.DustFor(script) {
			// Rerouted exactly like SendFees: no output, amount still
			// contributes to the native target.
			return amount, nil
		}
		ctx.Tx.AddTxOut(wire.NewTxOut(int64(amount), script))
		return amount, nil
	}
}

// SendAsset appends a colored output at its script's dust threshold and
// records its quantity into the marker at position (#outputs - 2)
// (spec §4.4: "Send asset").
func SendAsset(script []byte, am money.AssetMoney) Intent {
	return func(ctx *Context) (money.Money, error) {
		if err := ctx.ClaimOpReturnOwner(opReturnOwnerColor); err != nil {
			return nil, err
		}
		dust := ctx.DustFor(script)
		ctx.Tx.AddTxOut(wire.NewTxOut(int64(dust), script))
		appendQuantity(ctx.ensureMarker(), am.Quantity)
		ctx.FeeAccumulator += dust
		return am, nil
	}
}

// SendAssetToExchange behaves like SendAsset but forces marker
// version >= 2, opcode 0x01, and sets the exchange flag for the new
// output's marker index; it fails if the marker's opcode is already
// set to anything but 0x01 (spec §4.4, §9 decision).
func SendAssetToExchange(script []byte, am money.AssetMoney) Intent {
	return func(ctx *Context) (money.Money, error) {
		if err := ctx.ClaimOpReturnOwner(opReturnOwnerColor); err != nil {
			return nil, err
		}
		m := ctx.ensureMarker()
		if m.Version < marker.Version2 {
			m.Version = marker.Version2
		}
		if m.Opcode != 0 && m.Opcode != marker.OpcodeTransferToExchange {
			return nil, &ErrConfiguration{Reason: "marker opcode already set to a non-transfer-to-exchange value"}
		}
		m.Opcode = marker.OpcodeTransferToExchange

		dust := ctx.DustFor(script)
		ctx.Tx.AddTxOut(wire.NewTxOut(int64(dust), script))
		idx := appendQuantity(m, am.Quantity)
		for len(m.ExchangeFlags) <= idx {
			m.ExchangeFlags = append(m.ExchangeFlags, false)
		}
		m.ExchangeFlags[idx] = true
		ctx.FeeAccumulator += dust
		return am, nil
	}
}

// PerformExchangeOperation adds two colored outputs, one per
// (script, asset) pair, each flagged in the marker's exchange-flags
// bitfield, and stores a SHA-1 of reason as marker metadata while
// writing reason into the external metadata repository (spec §4.4).
// Forbidden if any per-asset intent is already queued in the current
// group.
func PerformExchangeOperation(g *Group, s1 []byte, a1 money.AssetMoney, s2 []byte, a2 money.AssetMoney, reason string) (Intent, error) {
	if len(g.AssetIntents) != 0 {
		return nil, &ErrConfiguration{Reason: "exchange operation queued after a per-asset intent in group " + g.Name}
	}
	return func(ctx *Context) (money.Money, error) {
		if err := ctx.ClaimOpReturnOwner(opReturnOwnerExchange); err != nil {
			return nil, err
		}
		m := ctx.ensureMarker()
		if m.Version < marker.Version2 {
			m.Version = marker.Version2
		}
		m.Opcode = marker.OpcodeExchangeOperation

		for _, pair := range []struct {
			script []byte
			am     money.AssetMoney
		}{{s1, a1}, {s2, a2}} {
			dust := ctx.DustFor(pair.script)
			ctx.Tx.AddTxOut(wire.NewTxOut(int64(dust), pair.script))
			idx := appendQuantity(m, pair.am.Quantity)
			for len(m.ExchangeFlags) <= idx {
				m.ExchangeFlags = append(m.ExchangeFlags, false)
			}
			m.ExchangeFlags[idx] = true
			ctx.FeeAccumulator += dust
		}
		sum := sha1.Sum([]byte(reason))
		m.Metadata = sum[:]
		if ctx.Metadata != nil {
			ctx.Metadata(reason)
		}
		return money.NativeMoney(0), nil
	}, nil
}

// IssueAsset finds an issuance coin in the group matching id, inserts
// its input at index 0, subtracts its bearer value from the fee
// accumulator, and if it carries a definition URL writes
// "u=" || url into the marker metadata (spec §4.4: "Issue asset").
// Only one asset-id may be issued per transaction.
func IssueAsset(g *Group, script []byte, am money.AssetMoney) Intent {
	return func(ctx *Context) (money.Money, error) {
		if ctx.IssuedAssetID != nil && *ctx.IssuedAssetID != am.ID {
			return nil, &ErrConfiguration{Reason: "only one asset may be issued per transaction"}
		}
		ic, ok := g.IssuanceCoinFor(am.ID)
		if !ok {
			return nil, &ErrNotFound{Kind: "coin"}
		}
		ctx.RegisterCoins(ic)

		op := ic.Outpoint()
		newIn := wire.NewTxIn(&op, nil, nil)
		ctx.Tx.TxIn = append([]*wire.TxIn{newIn}, ctx.Tx.TxIn...)
		ctx.Consume(ic)
		ctx.FeeAccumulator -= money.NativeMoney(ic.Value())

		dust := ctx.DustFor(script)
		newOut := wire.NewTxOut(int64(dust), script)
		ctx.Tx.TxOut = append([]*wire.TxOut{newOut}, ctx.Tx.TxOut...)
		if ctx.MarkerIndex >= 0 {
			ctx.MarkerIndex++
		}

		m := ctx.ensureMarker()
		m.Quantities = append([]uint64{am.Quantity}, m.Quantities...)
		if ic.HasDefinitionURL() {
			m.Metadata = []byte("u=" + ic.DefinitionURL)
		}
		id := am.ID
		ctx.IssuedAssetID = &id
		return money.NativeMoney(0), nil
	}
}

// SendFees contributes amount to the native target without producing
// any output (spec §4.4: "Send fees").
func SendFees(amount money.NativeMoney) Intent {
	return func(ctx *Context) (money.Money, error) {
		return amount, nil
	}
}

// additionalFeesIntent is the implicit leader of the native pass (spec
// §4.3 step 4): it returns the native cost accumulated so far by
// issuance and per-asset passes (colored-output dust, issuance bearer
// value recovery) so the native selection covers it.
func additionalFeesIntent() Intent {
	return func(ctx *Context) (money.Money, error) {
		return ctx.FeeAccumulator, nil
	}
}

// SizeEstimator estimates the serialized size of an (unsigned)
// transaction given its spent coins, used by SendEstimatedFees.
type SizeEstimator func(tx *wire.MsgTx, spent func(wire.OutPoint) (coin.Coin, bool)) (int, error)

// SendEstimatedFees builds an unsigned transaction, estimates its size
// via estimate, multiplies by rate (sat/vbyte), then applies SendFees
// (spec §4.4: "Send estimated fees").
func SendEstimatedFees(rate int64, estimate SizeEstimator) Intent {
	return func(ctx *Context) (money.Money, error) {
		size, err := estimate(ctx.Tx, ctx.FindCoin)
		if err != nil {
			return nil, err
		}
		return money.NativeMoney(int64(size) * rate), nil
	}
}

// SendFeesSplit partitions amount into N ~ equal shares (N = number of
// groups) and returns the single share intended for one group (spec
// §4.4: "Send fees split").
func SendFeesSplit(amount money.NativeMoney, groupCount int) Intent {
	if groupCount <= 0 {
		groupCount = 1
	}
	share := int64(amount) / int64(groupCount)
	return SendFees(money.NativeMoney(share))
}

// StealthSend reserves the one OP-RETURN slot for a stealth-payment
// ephemeral-key payload, failing if the slot is already used by a
// colored-coin intent or another stealth send (spec §4.4: "Stealth
// send").
func StealthSend(script []byte, amount money.NativeMoney, ephemeral *btcec.PublicKey) Intent {
	return func(ctx *Context) (money.Money, error) {
		if ctx.OpReturnOwner() == opReturnOwnerStealth {
			return nil, &ErrConfiguration{Reason: "OP_RETURN slot already claimed by another stealth send"}
		}
		if err := ctx.ClaimOpReturnOwner(opReturnOwnerStealth); err != nil {
			return nil, err
		}
		ctx.Tx.AddTxOut(wire.NewTxOut(int64(amount), script))
		if ephemeral != nil {
			opReturnScript, err := opReturnPush(ephemeral.SerializeCompressed())
			if err != nil {
				return nil, err
			}
			ctx.Tx.AddTxOut(wire.NewTxOut(0, opReturnScript))
		}
		return amount, nil
	}
}

// SendMoneyBag expands bag into one intent per component rather than
// ever treating the bag itself as an addable amount (§9 decision,
// documented on money.Bag).
func SendMoneyBag(nativeScript []byte, assetScript []byte, bag money.Bag, dustPrevention bool) []Intent {
	var intents []Intent
	if n, ok := bag.NativeComponent(); ok {
		intents = append(intents, SendNative(nativeScript, n, dustPrevention, false))
	}
	for _, a := range bag.AssetComponents() {
		intents = append(intents, SendAsset(assetScript, a))
	}
	return intents
}
