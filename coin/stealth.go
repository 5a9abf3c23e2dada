package coin

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// StealthAddress is the minimal stealth-address material the signer
// needs to uncover a spend key (spec: "address/stealth-address parsing"
// is an out-of-scope external collaborator; this is the narrow shape
// the builder itself touches — a scan key plus one or more spend keys
// and the multisig threshold over them).
type StealthAddress struct {
	ScanPubKey   *btcec.PublicKey
	SpendPubKeys []*btcec.PublicKey
	RequiredSigs int
}

// StealthCoin is a plain coin plus stealth address material (spec: "a
// stealth coin (plain coin plus stealth address material)").
type StealthCoin struct {
	PlainCoin
	Address      StealthAddress
	EphemeralKey *btcec.PublicKey
}

func NewStealthCoin(base PlainCoin, addr StealthAddress, ephemeral *btcec.PublicKey) StealthCoin {
	return StealthCoin{PlainCoin: base, Address: addr, EphemeralKey: ephemeral}
}

// UncoverSpendKeys derives the private spend keys for this stealth
// coin given the recipient's scan private key and a set of candidate
// spend private keys, using the standard ECDH tweak: shared = scanPriv
// * ephemeralPub; each candidate spend key is accepted if its public
// key, tweaked by sha256(shared.X), matches one of the address's spend
// pubkeys.
func (c StealthCoin) UncoverSpendKeys(
	scanPriv *btcec.PrivateKey,
	candidateSpendKeys []*btcec.PrivateKey,
) ([]*btcec.PrivateKey, error) {
	if c.EphemeralKey == nil {
		return nil, fmt.Errorf("coin: stealth coin has no ephemeral key")
	}
	shared := tweakFromECDH(scanPriv, c.EphemeralKey)

	var uncovered []*btcec.PrivateKey
	for _, cand := range candidateSpendKeys {
		tweaked := tweakPrivateKey(cand, shared)
		tweakedPub := tweaked.PubKey()
		for _, spendPub := range c.Address.SpendPubKeys {
			if tweakedPub.IsEqual(spendPub) {
				uncovered = append(uncovered, tweaked)
				break
			}
		}
	}
	if len(uncovered) == 0 {
		return nil, fmt.Errorf("coin: no candidate spend key uncovers this stealth coin")
	}
	return uncovered, nil
}

// tweakFromECDH computes sha256(sharedPoint.X) for scanPriv * ephemeralPub.
func tweakFromECDH(scanPriv *btcec.PrivateKey, ephemeralPub *btcec.PublicKey) [32]byte {
	// Scalar multiplication: ephemeralPub * scanPriv, matching the
	// standard stealth-address ECDH construction (recipient's scan key
	// times the sender's ephemeral pubkey).
	var jacobian btcec.JacobianPoint
	ephemeralPub.AsJacobian(&jacobian)
	var result btcec.JacobianPoint
	btcec.ScalarMultNonConst(&scanPriv.Key, &jacobian, &result)
	result.ToAffine()
	return sha256.Sum256(result.X.Bytes()[:])
}

// tweakPrivateKey returns candidate + tweak (mod curve order), the
// private-key half of the stealth-address derivation.
func tweakPrivateKey(candidate *btcec.PrivateKey, tweak [32]byte) *btcec.PrivateKey {
	var tweakScalar btcec.ModNScalar
	tweakScalar.SetBytes(&tweak)
	sum := new(btcec.ModNScalar).Set(&candidate.Key)
	sum.Add(&tweakScalar)
	return btcec.PrivKeyFromScalar(sum)
}

var _ Coin = StealthCoin{}
