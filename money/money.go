// Package money implements the native-currency and colored-asset amount
// types the builder operates on (spec §3: "Asset money", "Native money",
// "Money bag").
//
// The arithmetic pattern — clone-then-mutate, explicit errors on
// overflow/underflow rather than silent wraparound — follows the
// Value.Add/Value.Sub/Value.GreaterOrEqual shape retrieved from
// Salvionied/apollo's helpers.go, re-expressed here over two distinct
// amount kinds instead of one combined coin+multi-asset value.
package money

import (
	"errors"
	"fmt"
)

// ErrKindMismatch is returned when two Money values of different kinds
// (or different asset ids) are compared or combined.
var ErrKindMismatch = errors.New("money: mismatched kind")

// ErrOverflow is returned when an arithmetic operation would overflow
// the underlying representation.
var ErrOverflow = errors.New("money: overflow")

// ErrUnderflow is returned when a subtraction would go negative for a
// kind that cannot represent negative amounts (asset quantities).
var ErrUnderflow = errors.New("money: underflow")

// Money is the generic amount type the coin selector and build planner
// operate over. A Money value is only ever compared against, added to,
// or subtracted from another Money value of the identical kind (same
// concrete type, and for AssetMoney the same AssetID); mismatched kinds
// return ErrKindMismatch rather than panicking, since callers construct
// target amounts from caller intents and single misconfigured intent
// shouldn't crash a whole build.
type Money interface {
	// Cmp returns -1, 0, or +1 as the receiver is less than, equal to,
	// or greater than other.
	Cmp(other Money) (int, error)
	// Add returns the sum of the receiver and other.
	Add(other Money) (Money, error)
	// Sub returns the receiver minus other.
	Sub(other Money) (Money, error)
	// IsZero reports whether the amount is exactly zero.
	IsZero() bool
	// String renders a short human-readable form for logging.
	String() string
}

// Zero returns the zero value of the same kind as m, computed as
// m.Sub(m) per spec §4.1 ("a zero produced by target − target").
func Zero(m Money) (Money, error) {
	return m.Sub(m)
}

// NativeMoney is a signed satoshi amount (spec: "Native money: signed
// integer satoshi").
type NativeMoney int64

func (n NativeMoney) Cmp(other Money) (int, error) {
	o, ok := other.(NativeMoney)
	if !ok {
		return 0, ErrKindMismatch
	}
	switch {
	case n < o:
		return -1, nil
	case n > o:
		return 1, nil
	default:
		return 0, nil
	}
}

func (n NativeMoney) Add(other Money) (Money, error) {
	o, ok := other.(NativeMoney)
	if !ok {
		return nil, ErrKindMismatch
	}
	sum := n + o
	// Overflow check for signed addition.
	if (o > 0 && sum < n) || (o < 0 && sum > n) {
		return nil, ErrOverflow
	}
	return sum, nil
}

func (n NativeMoney) Sub(other Money) (Money, error) {
	o, ok := other.(NativeMoney)
	if !ok {
		return nil, ErrKindMismatch
	}
	diff := n - o
	if (o < 0 && diff < n) || (o > 0 && diff > n) {
		return nil, ErrOverflow
	}
	return diff, nil
}

func (n NativeMoney) IsZero() bool { return n == 0 }

func (n NativeMoney) String() string {
	return fmt.Sprintf("%d sat", int64(n))
}

// AssetMoney is an (asset-id, unsigned quantity) pair (spec: "Asset
// money: (asset-id, unsigned quantity)").
type AssetMoney struct {
	ID       AssetID
	Quantity uint64
}

func NewAssetMoney(id AssetID, quantity uint64) AssetMoney {
	return AssetMoney{ID: id, Quantity: quantity}
}

func (a AssetMoney) sameAsset(other Money) (AssetMoney, error) {
	o, ok := other.(AssetMoney)
	if !ok || o.ID != a.ID {
		return AssetMoney{}, ErrKindMismatch
	}
	return o, nil
}

func (a AssetMoney) Cmp(other Money) (int, error) {
	o, err := a.sameAsset(other)
	if err != nil {
		return 0, err
	}
	switch {
	case a.Quantity < o.Quantity:
		return -1, nil
	case a.Quantity > o.Quantity:
		return 1, nil
	default:
		return 0, nil
	}
}

func (a AssetMoney) Add(other Money) (Money, error) {
	o, err := a.sameAsset(other)
	if err != nil {
		return nil, err
	}
	sum := a.Quantity + o.Quantity
	if sum < a.Quantity {
		return nil, ErrOverflow
	}
	return AssetMoney{ID: a.ID, Quantity: sum}, nil
}

func (a AssetMoney) Sub(other Money) (Money, error) {
	o, err := a.sameAsset(other)
	if err != nil {
		return nil, err
	}
	if o.Quantity > a.Quantity {
		return nil, ErrUnderflow
	}
	return AssetMoney{ID: a.ID, Quantity: a.Quantity - o.Quantity}, nil
}

func (a AssetMoney) IsZero() bool { return a.Quantity == 0 }

func (a AssetMoney) String() string {
	return fmt.Sprintf("%d of %s", a.Quantity, a.ID)
}

// Bag is a multiset of Money values (spec: "Money bag ... sending a bag
// is equivalent to sending each component separately"). Bag itself does
// not implement Money: the build planner (see build/intents.go,
// SendMoneyBag) always expands a bag into one send per component
// rather than treating the bag as a single addable amount, per the §9
// Open Question decision recorded in DESIGN.md.
type Bag []Money

// NativeComponent returns the NativeMoney component of the bag, if any.
func (b Bag) NativeComponent() (NativeMoney, bool) {
	for _, m := range b {
		if n, ok := m.(NativeMoney); ok {
			return n, true
		}
	}
	return 0, false
}

// AssetComponents returns the AssetMoney components of the bag.
func (b Bag) AssetComponents() []AssetMoney {
	var out []AssetMoney
	for _, m := range b {
		if a, ok := m.(AssetMoney); ok {
			out = append(out, a)
		}
	}
	return out
}
