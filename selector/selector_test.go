package selector

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/lykke-go/coloredcoin/money"
)

type testCoin struct {
	id     string
	amount money.NativeMoney
}

func (c testCoin) SelectorID() string  { return c.id }
func (c testCoin) Amount() money.Money { return c.amount }

func mkCoins(amounts ...int64) []Coin {
	coins := make([]Coin, len(amounts))
	for i, a := range amounts {
		coins[i] = testCoin{id: fmt.Sprintf("c%d", i), amount: money.NativeMoney(a)}
	}
	return coins
}

func TestSelectExactMatch(t *testing.T) {
	coins := mkCoins(100, 250, 500)
	got, err := Select(coins, money.NativeMoney(250), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("select: %s", err)
	}
	if len(got) != 1 || got[0].SelectorID() != "c1" {
		t.Fatalf("expected exact match c1, got %+v", got)
	}
}

func TestSelectZeroTarget(t *testing.T) {
	coins := mkCoins(100, 250)
	got, err := Select(coins, money.NativeMoney(0), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("select: %s", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty selection, got %+v", got)
	}
}

func TestSelectAscendingSweep(t *testing.T) {
	coins := mkCoins(100, 150, 300, 1000)
	got, err := Select(coins, money.NativeMoney(250), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("select: %s", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two-coin sweep, got %+v", got)
	}
	var sum int64
	for _, c := range got {
		sum += int64(c.Amount().(money.NativeMoney))
	}
	if sum != 250 {
		t.Fatalf("expected sum 250, got %d", sum)
	}
}

func TestSelectSmallestOver(t *testing.T) {
	coins := mkCoins(50, 80, 400, 900)
	got, err := Select(coins, money.NativeMoney(300), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("select: %s", err)
	}
	if len(got) != 1 || got[0].SelectorID() != "c2" {
		t.Fatalf("expected smallest-over c2 (400), got %+v", got)
	}
}

func TestSelectInsufficientFunds(t *testing.T) {
	coins := mkCoins(10, 20, 30)
	_, err := Select(coins, money.NativeMoney(1000), rand.New(rand.NewSource(1)))
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestSelectRandomizedSearchMeetsTarget(t *testing.T) {
	// No ascending-sweep prefix or single coin exactly covers target,
	// and no single coin is both below the running sum and alone over
	// target at the right moment, forcing the randomized fallback.
	coins := mkCoins(90, 95, 120, 130, 140)
	got, err := Select(coins, money.NativeMoney(300), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("select: %s", err)
	}
	var sum int64
	for _, c := range got {
		sum += int64(c.Amount().(money.NativeMoney))
	}
	if sum < 300 {
		t.Fatalf("expected selection to cover target 300, got sum %d", sum)
	}
}

func TestSelectDeterministicGivenSeed(t *testing.T) {
	coins := mkCoins(90, 95, 120, 130, 140)
	got1, err := Select(coins, money.NativeMoney(300), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("select: %s", err)
	}
	got2, err := Select(coins, money.NativeMoney(300), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("select: %s", err)
	}
	if len(got1) != len(got2) {
		t.Fatalf("expected deterministic selection size, got %d vs %d", len(got1), len(got2))
	}
	for i := range got1 {
		if got1[i].SelectorID() != got2[i].SelectorID() {
			t.Fatalf("expected deterministic selection order, got %v vs %v", got1, got2)
		}
	}
}
