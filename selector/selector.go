// Package selector implements the coin selector (spec §4.1): choosing
// a subset of coins covering a target amount with minimal change,
// generic over any money.Money kind.
//
// The Coin/Selector interface shape is grounded on
// daglabs-btcd/util/coinset's CoinSelector (CoinSelect(target, coins)
// returning a coin list or an error), adapted here to the repo's
// generic comparable Money abstraction instead of a single concrete
// btcutil.Amount.
package selector

import (
	"fmt"
	"sort"

	"github.com/lykke-go/coloredcoin/money"
)

// Coin is the minimal shape the selector needs from a candidate: an
// identifier stable enough for equality/consumption tracking, and an
// amount expressed in the money kind being selected for.
type Coin interface {
	SelectorID() string
	Amount() money.Money
}

// ErrInsufficientFunds is returned when no subset of candidates
// (in any shuffle) can meet the target.
var ErrInsufficientFunds = fmt.Errorf("selector: insufficient funds")

// Rand is the narrow randomness surface the selector needs: a
// Fisher-Yates shuffle driven by the caller's generator, so the
// selector is deterministic given a fixed seed (spec §4.1: "The
// selector is deterministic given a fixed generator seed").
type Rand interface {
	Intn(n int) int
}

const maxRandomizedRounds = 1000

// Select implements the spec §4.1 algorithm: exact match, zero target,
// ascending sweep, smallest-over, then a randomized 1000-round
// Fisher-Yates search as a last resort.
func Select(candidates []Coin, target money.Money, rnd Rand) ([]Coin, error) {
	zero, err := money.Zero(target)
	if err != nil {
		return nil, fmt.Errorf("selector: computing zero: %w", err)
	}

	for _, c := range candidates {
		if cmp, err := c.Amount().Cmp(target); err != nil {
			return nil, fmt.Errorf("selector: comparing candidate amount: %w", err)
		} else if cmp == 0 {
			return []Coin{c}, nil
		}
	}

	if isZero, err := target.Cmp(zero); err != nil {
		return nil, fmt.Errorf("selector: comparing target to zero: %w", err)
	} else if isZero == 0 {
		return nil, nil
	}

	sorted := make([]Coin, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		cmp, err := sorted[i].Amount().Cmp(sorted[j].Amount())
		if err != nil {
			panic(fmt.Sprintf("selector: incomparable candidate amounts: %s", err))
		}
		return cmp < 0
	})

	sum := zero
	var prefix []Coin
	for i, c := range sorted {
		cmp, err := c.Amount().Cmp(target)
		if err != nil {
			return nil, fmt.Errorf("selector: comparing candidate amount: %w", err)
		}
		sumCmp, err := sum.Cmp(target)
		if err != nil {
			return nil, fmt.Errorf("selector: comparing running sum: %w", err)
		}

		if sumCmp < 0 && cmp < 0 {
			sum, err = sum.Add(c.Amount())
			if err != nil {
				return nil, fmt.Errorf("selector: accumulating: %w", err)
			}
			prefix = append(prefix, c)
			if eq, err := sum.Cmp(target); err != nil {
				return nil, err
			} else if eq == 0 {
				return prefix, nil
			}
			continue
		}

		if sumCmp < 0 && cmp > 0 {
			return []Coin{c}, nil
		}

		// Neither below-sum-accumulate nor single-over: fall through to
		// the randomized search over the full candidate set (spec §4.1
		// step 5).
		_ = i
		return randomizedSearch(sorted, target, zero, rnd)
	}

	return randomizedSearch(sorted, target, zero, rnd)
}

func randomizedSearch(candidates []Coin, target, zero money.Money, rnd Rand) ([]Coin, error) {
	var bestOverSum money.Money
	var bestOverWitness []Coin
	haveBest := false

	shuffled := make([]Coin, len(candidates))
	copy(shuffled, candidates)

	for round := 0; round < maxRandomizedRounds; round++ {
		fisherYatesShuffle(shuffled, rnd)

		sum := zero
		var witness []Coin
		for _, c := range shuffled {
			var err error
			sum, err = sum.Add(c.Amount())
			if err != nil {
				return nil, fmt.Errorf("selector: accumulating: %w", err)
			}
			witness = append(witness, c)
			cmp, err := sum.Cmp(target)
			if err != nil {
				return nil, fmt.Errorf("selector: comparing: %w", err)
			}
			if cmp == 0 {
				return witness, nil
			}
			if cmp > 0 {
				if !haveBest {
					haveBest = true
					bestOverSum = sum
					bestOverWitness = append([]Coin{}, witness...)
				} else {
					betterCmp, err := sum.Cmp(bestOverSum)
					if err != nil {
						return nil, fmt.Errorf("selector: comparing best-over: %w", err)
					}
					if betterCmp < 0 {
						bestOverSum = sum
						bestOverWitness = append([]Coin{}, witness...)
					}
				}
				break
			}
		}
	}

	if haveBest {
		return bestOverWitness, nil
	}
	return nil, ErrInsufficientFunds
}

// fisherYatesShuffle shuffles coins in place using rnd.
func fisherYatesShuffle(coins []Coin, rnd Rand) {
	for i := len(coins) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		coins[i], coins[j] = coins[j], coins[i]
	}
}
