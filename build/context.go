package build

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/marker"
	"github.com/lykke-go/coloredcoin/money"
)

// ChangeType distinguishes the two change-script slots a group
// carries (spec §4.3: "change-type is uncolored" / colored change).
type ChangeType int

const (
	ChangeUncolored ChangeType = iota
	ChangeColored
)

// MetadataSink is the external metadata repository side-channel (spec
// §6: "Metadata repository: add(string) -> void"). Writes must be
// idempotent from the caller's standpoint since the fixed point may
// re-invoke intents.
type MetadataSink func(note string)

// Context is the single growing transaction plus all the bookkeeping
// the planner and intents share while building it (spec §3: "Build
// context").
type Context struct {
	Tx *wire.MsgTx

	consumed map[wire.OutPoint]bool
	coins    map[wire.OutPoint]coin.Coin

	FeeAccumulator money.NativeMoney

	Marker      *marker.Marker
	MarkerIndex int // -1 when no marker output has been added yet
	opReturnOwner string

	ChangeAmount money.Money
	// Dust is the per-pass change-materiality threshold, expressed in
	// whatever money kind the active pass targets (spec §4.3: "set
	// change-amount, dust, cover-only appropriate to asset money" /
	// "dust = native dust threshold"). NativeDust is the fixed
	// configured native dust threshold the native pass installs as
	// Dust; colored outputs are sized by DustFor(script) instead.
	Dust       money.Money
	NativeDust money.NativeMoney
	CoverOnly  money.Money
	ChangeType ChangeType

	// RelayFeeRate is the sat/kvB rate dust-for(script) scales with
	// (spec §4.3/§4.4: "the script's dust threshold", formula in
	// SPEC_FULL.md).
	RelayFeeRate int64

	LockTimeSet          bool
	NonFinalSequenceFlag bool

	// AdditionalKeys holds private keys discovered mid-build (spec
	// §4.6 key lookup precedence: "context-additional keys, populated
	// by stealth uncover"), consulted by the signer after the builder's
	// own key set and before the caller's key-finder callback.
	AdditionalKeys []*btcec.PrivateKey

	Metadata MetadataSink

	// MarkerTag/MarkerVersion seed a fresh Marker the first time a
	// colored intent needs one (configurable per spec §4.2: "constant
	// marker magic; configurable").
	MarkerTag     uint16
	MarkerVersion uint16

	// IssuedAssetID tracks the single asset-id issued by this build, if
	// any (spec §4.4: "only one asset-id may be issued per transaction").
	IssuedAssetID *money.AssetID
}

// AddAdditionalKeys appends keys uncovered during signing (e.g. stealth
// spend keys) to the context's key set.
func (c *Context) AddAdditionalKeys(keys ...*btcec.PrivateKey) {
	c.AdditionalKeys = append(c.AdditionalKeys, keys...)
}

// NewContext builds an empty context over a fresh version-2 transaction.
func NewContext(metadata MetadataSink, markerTag, markerVersion uint16, nativeDust money.NativeMoney, relayFeeRate int64) *Context {
	tx := wire.NewMsgTx(2)
	return &Context{
		Tx:            tx,
		consumed:      make(map[wire.OutPoint]bool),
		coins:         make(map[wire.OutPoint]coin.Coin),
		MarkerIndex:   -1,
		Metadata:      metadata,
		MarkerTag:     markerTag,
		MarkerVersion: markerVersion,
		NativeDust:    nativeDust,
		RelayFeeRate:  relayFeeRate,
	}
}

// DustFor returns the relay dust threshold for an output carrying
// script, at the context's configured relay fee rate.
func (c *Context) DustFor(script []byte) money.NativeMoney {
	return money.DustFor(script, c.RelayFeeRate)
}

// ensureMarker lazily creates the context's Marker on first use by a
// colored intent, adding its placeholder OP_RETURN output immediately
// so later outputs are added after it; Finish rewrites that output's
// script once the marker's final contents are known (spec §4.3:
// "rewrite the marker output's script with the final encoded marker
// payload").
func (c *Context) ensureMarker() *marker.Marker {
	if c.Marker == nil {
		c.Marker = &marker.Marker{Tag: c.MarkerTag, Version: c.MarkerVersion}
		script, err := c.Marker.ToScript()
		if err != nil {
			script = nil
		}
		c.Tx.AddTxOut(wire.NewTxOut(0, script))
		c.MarkerIndex = len(c.Tx.TxOut) - 1
	}
	return c.Marker
}

// Finish rewrites the marker output's script with the final encoded
// marker payload, called once after every group has been planned
// (spec §4.3: "After all groups finish, call Finish on the context").
func (c *Context) Finish() error {
	if c.Marker == nil {
		return nil
	}
	script, err := c.Marker.ToScript()
	if err != nil {
		return fmt.Errorf("build: encoding final marker: %w", err)
	}
	if c.MarkerIndex < 0 || c.MarkerIndex >= len(c.Tx.TxOut) {
		return fmt.Errorf("build: marker output index %d out of range", c.MarkerIndex)
	}
	c.Tx.TxOut[c.MarkerIndex].PkScript = script
	return nil
}

// RegisterCoins makes coins available to FindCoin by outpoint.
func (c *Context) RegisterCoins(coins ...coin.Coin) {
	for _, co := range coins {
		c.coins[co.Outpoint()] = co
	}
}

// FindCoin looks up a coin by outpoint among registered coins.
func (c *Context) FindCoin(op wire.OutPoint) (coin.Coin, bool) {
	co, ok := c.coins[op]
	return co, ok
}

// Coins returns every coin registered on the context, in no particular
// order. Used by the signer to recover P2SH redeem scripts from
// registered coin.ScriptCoin wrappers.
func (c *Context) Coins() []coin.Coin {
	out := make([]coin.Coin, 0, len(c.coins))
	for _, co := range c.coins {
		out = append(out, co)
	}
	return out
}

// Consume marks a coin's outpoint as spent by this build.
func (c *Context) Consume(co coin.Coin) {
	c.consumed[co.Outpoint()] = true
}

// IsConsumed reports whether a coin has already been selected in this build.
func (c *Context) IsConsumed(co coin.Coin) bool {
	return c.consumed[co.Outpoint()]
}

// EnsureInputFor appends a transaction input spending op if one isn't
// already present, returning its index.
func (c *Context) EnsureInputFor(op wire.OutPoint) int {
	for i, in := range c.Tx.TxIn {
		if in.PreviousOutPoint == op {
			return i
		}
	}
	c.Tx.AddTxIn(wire.NewTxIn(&op, nil, nil))
	idx := len(c.Tx.TxIn) - 1
	if c.LockTimeSet && !c.NonFinalSequenceFlag {
		c.Tx.TxIn[idx].Sequence = 0
		c.NonFinalSequenceFlag = true
	}
	return idx
}

// ClaimOpReturnOwner enforces the single-OP-RETURN-owner rule (spec
// §4.4: "at most one subsystem may use the overlay output per
// transaction"). An empty owner string means unclaimed.
func (c *Context) ClaimOpReturnOwner(owner string) error {
	if c.opReturnOwner != "" && c.opReturnOwner != owner {
		return &ErrConfiguration{Reason: "OP_RETURN slot already claimed by " + c.opReturnOwner}
	}
	c.opReturnOwner = owner
	return nil
}

// OpReturnOwner reports the current claimant of the OP_RETURN slot, or
// "" if unclaimed.
func (c *Context) OpReturnOwner() string { return c.opReturnOwner }

// memento is a deep snapshot of everything the funding fixed point
// mutates, restored verbatim on each re-plan (spec §4.3: "context ←
// context.memento()").
type memento struct {
	txBytes        []byte
	consumed       map[wire.OutPoint]bool
	feeAccumulator money.NativeMoney
	markerSnapshot *marker.Marker
	markerIndex    int
	opReturnOwner  string
	lockTimeSet    bool
	nonFinalSeq    bool
	issuedAssetID  *money.AssetID
}

// Snapshot captures the current mutable state of the context.
func (c *Context) Snapshot() (*memento, error) {
	var buf bytes.Buffer
	if err := c.Tx.Serialize(&buf); err != nil {
		return nil, err
	}
	consumedCopy := make(map[wire.OutPoint]bool, len(c.consumed))
	for k, v := range c.consumed {
		consumedCopy[k] = v
	}
	var markerCopy *marker.Marker
	if c.Marker != nil {
		clone := *c.Marker
		clone.Quantities = append([]uint64{}, c.Marker.Quantities...)
		clone.Metadata = append([]byte{}, c.Marker.Metadata...)
		clone.ExchangeFlags = append([]bool{}, c.Marker.ExchangeFlags...)
		markerCopy = &clone
	}
	return &memento{
		txBytes:        buf.Bytes(),
		consumed:       consumedCopy,
		feeAccumulator: c.FeeAccumulator,
		markerSnapshot: markerCopy,
		markerIndex:    c.MarkerIndex,
		opReturnOwner:  c.opReturnOwner,
		lockTimeSet:    c.LockTimeSet,
		nonFinalSeq:    c.NonFinalSequenceFlag,
		issuedAssetID:  c.IssuedAssetID,
	}, nil
}

// Restore rewinds the context to a previously captured snapshot.
func (c *Context) Restore(m *memento) error {
	tx := wire.NewMsgTx(2)
	if err := tx.Deserialize(bytes.NewReader(m.txBytes)); err != nil {
		return err
	}
	c.Tx = tx
	c.consumed = m.consumed
	c.FeeAccumulator = m.feeAccumulator
	c.Marker = m.markerSnapshot
	c.MarkerIndex = m.markerIndex
	c.opReturnOwner = m.opReturnOwner
	c.LockTimeSet = m.lockTimeSet
	c.NonFinalSequenceFlag = m.nonFinalSeq
	c.IssuedAssetID = m.issuedAssetID
	return nil
}
