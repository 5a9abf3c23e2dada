package build

import (
	"errors"
	"fmt"

	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/money"
	"github.com/lykke-go/coloredcoin/selector"
)

// SelectFunc adapts the pluggable coin selector (spec §6: "Coin
// selector: select(coins, target) -> coins | null. Pluggable") into the
// shape the planner drives it with.
type SelectFunc func(candidates []selector.Coin, target money.Money) ([]selector.Coin, error)

// coinAdapter lets a coin.Coin stand in for selector.Coin under a
// caller-supplied amount projection (native value or asset quantity).
type coinAdapter struct {
	c        coin.Coin
	amountOf func(coin.Coin) money.Money
}

func (a coinAdapter) SelectorID() string  { return a.c.Outpoint().String() }
func (a coinAdapter) Amount() money.Money { return a.amountOf(a.c) }

func adaptCoins(coins []coin.Coin, amountOf func(coin.Coin) money.Money) []selector.Coin {
	out := make([]selector.Coin, len(coins))
	for i, c := range coins {
		out[i] = coinAdapter{c: c, amountOf: amountOf}
	}
	return out
}

const maxFixedPointIterations = 64

// fund runs the funding fixed point (spec §4.3: "plan(intents,
// candidates, zero)"): invoke every intent to compute the target,
// select candidates to cover it, and if the resulting change is
// material, snapshot-restore and recurse with a change output queued.
func fund(
	ctx *Context,
	g *Group,
	intents []Intent,
	candidates []coin.Coin,
	amountOf func(coin.Coin) money.Money,
	zero money.Money,
	changeType ChangeType,
	selectFn SelectFunc,
) ([]coin.Coin, error) {
	alreadyConsumed := make(map[string]bool)

	for iteration := 0; ; iteration++ {
		if iteration >= maxFixedPointIterations {
			return nil, fmt.Errorf("build: funding fixed point for group %q did not converge", g.Name)
		}

		snap, err := ctx.Snapshot()
		if err != nil {
			return nil, err
		}

		target := zero
		for _, intent := range intents {
			contribution, err := intent(ctx)
			if err != nil {
				return nil, err
			}
			target, err = target.Add(contribution)
			if err != nil {
				return nil, fmt.Errorf("build: accumulating target: %w", err)
			}
		}

		if ctx.CoverOnly != nil {
			sum, err := ctx.CoverOnly.Add(ctx.ChangeAmount)
			if err != nil {
				return nil, fmt.Errorf("build: cover-only + change: %w", err)
			}
			target = sum
		}

		var unconsumed []coin.Coin
		for _, c := range candidates {
			if !alreadyConsumed[c.Outpoint().String()] && !ctx.IsConsumed(c) {
				unconsumed = append(unconsumed, c)
			}
		}

		selected, err := selectFn(adaptCoins(unconsumed, amountOf), target)
		if errors.Is(err, selector.ErrInsufficientFunds) {
			selected, err = nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("build: selecting coins for group %q: %w", g.Name, err)
		}
		if selected == nil && !target.IsZero() {
			unconsumedTotal := zero
			for _, c := range unconsumed {
				unconsumedTotal, err = unconsumedTotal.Add(amountOf(c))
				if err != nil {
					return nil, err
				}
			}
			missing, err := target.Sub(unconsumedTotal)
			if err != nil {
				missing = target
			}
			return nil, &ErrInsufficientFunds{Group: g.Name, Missing: missing.String()}
		}

		total := zero
		var selectedCoins []coin.Coin
		for _, s := range selected {
			adapted := s.(coinAdapter)
			total, err = total.Add(adapted.Amount())
			if err != nil {
				return nil, err
			}
			selectedCoins = append(selectedCoins, adapted.c)
		}

		change, err := total.Sub(target)
		if err != nil {
			return nil, &ErrInsufficientFunds{Group: g.Name, Missing: target.String()}
		}
		if cmp, _ := change.Cmp(zero); cmp < 0 {
			return nil, &ErrInsufficientFunds{Group: g.Name, Missing: change.String()}
		}

		materialCmp, err := change.Cmp(ctx.Dust)
		if err != nil {
			return nil, fmt.Errorf("build: comparing change to dust: %w", err)
		}
		if materialCmp > 0 {
			changeScript, haveChangeScript := g.ChangeScripts[changeType]

			// An uncolored change amount that would itself be at or
			// below its change script's own dust threshold is
			// absorbed as fee rather than spun into an unrelayable
			// output (spec §4.3: "if change-type is uncolored and
			// change ≤ dust-for(changeScript): skip").
			absorbAsFee := false
			if changeType == ChangeUncolored && haveChangeScript {
				if nativeChange, isNative := change.(money.NativeMoney); isNative && nativeChange <= ctx.DustFor(changeScript) {
					absorbAsFee = true
				}
			}

			switch {
			case absorbAsFee:
				if n, ok := change.(money.NativeMoney); ok {
					ctx.FeeAccumulator += n
				}
			case !haveChangeScript:
				return nil, &ErrConfiguration{Reason: "missing change script for group " + g.Name}
			default:
				if err := ctx.Restore(snap); err != nil {
					return nil, err
				}
				ctx.ChangeAmount = change
				continue
			}
		}

		for _, c := range selectedCoins {
			ctx.Consume(c)
			alreadyConsumed[c.Outpoint().String()] = true
			ctx.EnsureInputFor(c.Outpoint())
		}
		return selectedCoins, nil
	}
}
