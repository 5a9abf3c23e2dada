package coin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lykke-go/coloredcoin/money"
)

// ColoredCoin is a bearer coin (plain or script) carrying a colored
// asset quantity (spec: "a colored coin (a bearer plain/script coin
// plus an asset-id and quantity)").
type ColoredCoin struct {
	Bearer   Coin
	AssetID  money.AssetID
	Quantity uint64
}

func NewColoredCoin(bearer Coin, id money.AssetID, quantity uint64) ColoredCoin {
	return ColoredCoin{Bearer: bearer, AssetID: id, Quantity: quantity}
}

func (c ColoredCoin) Outpoint() wire.OutPoint { return c.Bearer.Outpoint() }
func (c ColoredCoin) Value() btcutil.Amount   { return c.Bearer.Value() }
func (c ColoredCoin) PkScript() []byte        { return c.Bearer.PkScript() }

// AssetMoney returns this coin's (asset-id, quantity) as a money.Money.
func (c ColoredCoin) AssetMoney() money.AssetMoney {
	return money.NewAssetMoney(c.AssetID, c.Quantity)
}

func (c ColoredCoin) String() string {
	return fmt.Sprintf("ColoredCoin(%s:%d, %d of %s, bearer=%s)",
		c.Bearer.Outpoint().Hash, c.Bearer.Outpoint().Index, c.Quantity, c.AssetID, c.Bearer.Value())
}

// IssuanceCoin is a colored coin authorized to create new units of an
// asset (spec: "an issuance coin ... possibly carrying a definition
// URL"). Its asset id is the one passed to NewIssuanceCoin; nothing
// here derives it from the coin's outpoint.
type IssuanceCoin struct {
	ColoredCoin
	DefinitionURL string
}

func NewIssuanceCoin(bearer Coin, id money.AssetID, quantity uint64, definitionURL string) IssuanceCoin {
	return IssuanceCoin{
		ColoredCoin:   NewColoredCoin(bearer, id, quantity),
		DefinitionURL: definitionURL,
	}
}

func (c IssuanceCoin) HasDefinitionURL() bool {
	return c.DefinitionURL != ""
}
