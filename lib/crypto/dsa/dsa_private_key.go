package dsa

import (
	"crypto/dsa"
	"math/big"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/samber/oops"
)

// DSAPrivateKey is a signing key. It only exists on build hosts and in
// tests; devices carry public keys alone.
type DSAPrivateKey struct {
	DSAPublicKey
	X *big.Int
}

// FromStdPrivate converts a crypto/dsa private key.
func FromStdPrivate(k *dsa.PrivateKey) *DSAPrivateKey {
	return &DSAPrivateKey{
		DSAPublicKey: *FromStd(&k.PublicKey),
		X:            new(big.Int).Set(k.X),
	}
}

// NewPrivateKey builds a private key from domain parameters and x,
// deriving y = g^x mod p.
func NewPrivateKey(p, q, g, x *big.Int) (*DSAPrivateKey, error) {
	if p == nil || q == nil || g == nil || x == nil || x.Sign() <= 0 || x.Cmp(q) >= 0 {
		log.Warn("Failed to create DSA private key: x out of range")
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "x must lie in (0, q)")
	}
	return &DSAPrivateKey{
		DSAPublicKey: DSAPublicKey{
			P: p,
			Q: q,
			G: g,
			Y: new(big.Int).Exp(g, x, p),
		},
		X: x,
	}, nil
}

// Public returns the public half.
func (k *DSAPrivateKey) Public() *DSAPublicKey {
	pub := k.DSAPublicKey
	return &pub
}

// NewSigner creates a signer producing wire format signatures.
func (k *DSAPrivateKey) NewSigner() (types.Signer, error) {
	log.Debug("Creating new DSA signer")
	if k.X == nil || k.P == nil || k.Q == nil || k.G == nil {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "incomplete DSA private key")
	}
	return &DSASigner{
		k: &dsa.PrivateKey{PublicKey: *k.Std(), X: k.X},
		n: roundBits(k.Q.BitLen()),
	}, nil
}
