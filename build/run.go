package build

import (
	"github.com/lykke-go/coloredcoin/coin"
	"github.com/lykke-go/coloredcoin/money"
)

// Build runs the planner over every group in order (spec §4.3:
// "Invoked as build(sign?) -> transaction. For each group in order").
// Signing, if requested, is left to the caller (see sign.Sign), kept
// out of this package so build has no dependency on key material.
func Build(ctx *Context, groups []*Group, selectFn SelectFunc) error {
	for _, g := range groups {
		ctx.FeeAccumulator = 0

		for _, intent := range g.IssuanceIntents {
			if _, err := intent(ctx); err != nil {
				return err
			}
		}

		for _, id := range g.AssetOrder() {
			intents := g.AssetIntents[id]
			coins := g.ColoredCoinsOf(id)
			zero := money.NewAssetMoney(id, 0)

			ctx.ChangeAmount = zero
			ctx.Dust = zero
			ctx.CoverOnly = nil

			selected, err := fund(ctx, g, intents, coins, coloredAmount, zero, ChangeColored, selectFn)
			if err != nil {
				return err
			}
			for _, c := range selected {
				ctx.FeeAccumulator -= money.NativeMoney(c.Value())
			}
		}

		nativeIntents := make([]Intent, 0, len(g.NativeIntents)+1)
		nativeIntents = append(nativeIntents, additionalFeesIntent())
		nativeIntents = append(nativeIntents, g.NativeIntents...)

		ctx.ChangeAmount = money.NativeMoney(0)
		ctx.Dust = ctx.NativeDust
		ctx.CoverOnly = g.CoverOnly

		if _, err := fund(ctx, g, nativeIntents, g.PlainCoins(), nativeAmount, money.NativeMoney(0), ChangeUncolored, selectFn); err != nil {
			return err
		}
	}

	return ctx.Finish()
}

func coloredAmount(c coin.Coin) money.Money {
	cc := c.(coin.ColoredCoin)
	return cc.AssetMoney()
}

func nativeAmount(c coin.Coin) money.Money {
	return money.NativeMoney(c.Value())
}
