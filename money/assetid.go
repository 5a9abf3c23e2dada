package money

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
)

// AssetIDSize is the fixed width of an asset id (spec §3: "20-byte id
// derived from an issuer script").
const AssetIDSize = 20

// AssetID identifies a colored-coin asset.
type AssetID [AssetIDSize]byte

// AssetIDFromScript derives the asset id from an issuer script using
// Hash160 (RIPEMD160(SHA256(·))) — the same construction Bitcoin
// already uses for P2PKH/P2SH script hashes, chosen per SPEC_FULL.md
// since the spec names the width but not the hash.
func AssetIDFromScript(issuerScript []byte) AssetID {
	var id AssetID
	copy(id[:], btcutil.Hash160(issuerScript))
	return id
}

// AssetIDFromBytes copies b into a new AssetID. It panics if b is not
// exactly AssetIDSize bytes; callers that decode untrusted input should
// check len(b) first.
func AssetIDFromBytes(b []byte) AssetID {
	if len(b) != AssetIDSize {
		panic("money: asset id must be 20 bytes")
	}
	var id AssetID
	copy(id[:], b)
	return id
}

func (a AssetID) Bytes() []byte {
	out := make([]byte, AssetIDSize)
	copy(out, a[:])
	return out
}

func (a AssetID) String() string {
	return hex.EncodeToString(a[:])
}
