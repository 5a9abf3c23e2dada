package money

import "testing"

func TestNativeMoneyAddSub(t *testing.T) {
	a := NativeMoney(100)
	b := NativeMoney(40)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add returned error: %s", err)
	}
	if sum != NativeMoney(140) {
		t.Errorf("expected 140, got %v", sum)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub returned error: %s", err)
	}
	if diff != NativeMoney(60) {
		t.Errorf("expected 60, got %v", diff)
	}
}

func TestZeroFromSelfSub(t *testing.T) {
	target := NativeMoney(7)
	zero, err := Zero(target)
	if err != nil {
		t.Fatalf("Zero returned error: %s", err)
	}
	if !zero.IsZero() {
		t.Errorf("expected zero value, got %v", zero)
	}
}

func TestAssetMoneyMismatchedIDs(t *testing.T) {
	idA := AssetIDFromScript([]byte("script-a"))
	idB := AssetIDFromScript([]byte("script-b"))

	a := NewAssetMoney(idA, 10)
	b := NewAssetMoney(idB, 5)

	if _, err := a.Add(b); err != ErrKindMismatch {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
	if _, err := a.Cmp(b); err != ErrKindMismatch {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
}

func TestAssetMoneyUnderflow(t *testing.T) {
	id := AssetIDFromScript([]byte("script"))
	a := NewAssetMoney(id, 5)
	b := NewAssetMoney(id, 10)

	if _, err := a.Sub(b); err != ErrUnderflow {
		t.Errorf("expected ErrUnderflow, got %v", err)
	}
}

func TestBagComponents(t *testing.T) {
	id := AssetIDFromScript([]byte("script"))
	bag := Bag{
		NativeMoney(1000),
		NewAssetMoney(id, 40),
	}
	native, ok := bag.NativeComponent()
	if !ok || native != 1000 {
		t.Errorf("expected native component 1000, got %v (ok=%v)", native, ok)
	}
	assets := bag.AssetComponents()
	if len(assets) != 1 || assets[0].Quantity != 40 {
		t.Errorf("unexpected asset components: %+v", assets)
	}
}
