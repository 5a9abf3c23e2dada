package verify

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/build"
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/money"
)

// Violation is a single policy failure (spec §4.7: "Return the list of
// violations; an empty list means valid"). Verify never raises these —
// they are collected, not errors.
type Violation struct {
	Code    string
	Message string
}

func (v Violation) String() string { return fmt.Sprintf("%s: %s", v.Code, v.Message) }

// PolicyCheck inspects a transaction against its spent coins and
// reports every violation it finds (spec §6: "Transaction policy
// objects (miner, standard): check(tx, spent-coins) -> violation
// list. Pluggable").
type PolicyCheck func(tx *wire.MsgTx, spent map[wire.OutPoint]coin.Coin) []Violation

// Verifier runs a transaction through policy checks and an optional
// fee-margin check (spec §4.7).
type Verifier struct {
	FindCoin       CoinFinder
	MinerPolicy    PolicyCheck
	StandardPolicy PolicyCheck
}

// New builds a Verifier with the standard miner/dust policy pair, at
// the given relay fee rate (sat/kvB).
func New(findCoin CoinFinder, maxSize int, relayFeeRate int64) *Verifier {
	return &Verifier{
		FindCoin:       findCoin,
		MinerPolicy:    MinerSizeLimit(maxSize),
		StandardPolicy: StandardDustLimit(relayFeeRate),
	}
}

// Verify collects the transaction's spent coins, runs the miner and
// standard policy checks, and, if expectedFee is non-nil, checks the
// realized fee against it within margin (spec §4.7). margin is
// 2 * nativeDust when dustPrevention is true, else zero.
func (v *Verifier) Verify(tx *wire.MsgTx, expectedFee *money.NativeMoney, dustPrevention bool, nativeDust money.NativeMoney) ([]Violation, error) {
	spent := make(map[wire.OutPoint]coin.Coin, len(tx.TxIn))
	for i, in := range tx.TxIn {
		c, ok := v.FindCoin(in.PreviousOutPoint)
		if !ok {
			return nil, &build.ErrNotFound{Kind: "coin", Outpoint: in.PreviousOutPoint.String(), Input: i}
		}
		spent[in.PreviousOutPoint] = c
	}

	var violations []Violation
	if v.MinerPolicy != nil {
		violations = append(violations, v.MinerPolicy(tx, spent)...)
	}
	if v.StandardPolicy != nil {
		violations = append(violations, v.StandardPolicy(tx, spent)...)
	}

	if expectedFee != nil {
		var inTotal, outTotal int64
		for _, c := range spent {
			inTotal += int64(c.Value())
		}
		for _, out := range tx.TxOut {
			outTotal += out.Value
		}
		fee := inTotal - outTotal

		margin := int64(0)
		if dustPrevention {
			margin = 2 * int64(nativeDust)
		}
		diff := fee - int64(*expectedFee)
		if diff < 0 {
			diff = -diff
		}
		if diff > margin {
			violations = append(violations, Violation{
				Code:    "fee-margin",
				Message: fmt.Sprintf("fee %d outside expected %d +/- %d", fee, int64(*expectedFee), margin),
			})
		}
	}

	return violations, nil
}

// MinerSizeLimit rejects transactions whose serialized size exceeds
// maxSize, a stand-in for relay/mempool weight policy.
func MinerSizeLimit(maxSize int) PolicyCheck {
	return func(tx *wire.MsgTx, spent map[wire.OutPoint]coin.Coin) []Violation {
		if maxSize <= 0 {
			return nil
		}
		if size := tx.SerializeSize(); size > maxSize {
			return []Violation{{
				Code:    "tx-too-large",
				Message: fmt.Sprintf("serialized size %d exceeds limit %d", size, maxSize),
			}}
		}
		return nil
	}
}

// StandardDustLimit flags any non-null-data output whose value falls
// below its own script's relay dust threshold (spec §4.3/§4.7: "the
// script's dust threshold"), computed at relayFeeRate sat/kvB.
func StandardDustLimit(relayFeeRate int64) PolicyCheck {
	return func(tx *wire.MsgTx, spent map[wire.OutPoint]coin.Coin) []Violation {
		var out []Violation
		for i, o := range tx.TxOut {
			if txscript.GetScriptClass(o.PkScript) == txscript.NullDataTy {
				continue
			}
			threshold := money.DustFor(o.PkScript, relayFeeRate)
			if o.Value < int64(threshold) {
				out = append(out, Violation{
					Code:    "dust-output",
					Message: fmt.Sprintf("output %d value %d below dust threshold %d", i, o.Value, int64(threshold)),
				})
			}
		}
		return out
	}
}
