package dsa

import (
	"crypto/dsa"
	"math/big"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/samber/oops"
)

var one = big.NewInt(1)

// DSAPublicKey holds the domain parameters and the public value of one
// trusted signing key.
type DSAPublicKey struct {
	P, Q, G, Y *big.Int
}

// FromStd converts a crypto/dsa public key.
func FromStd(k *dsa.PublicKey) *DSAPublicKey {
	return &DSAPublicKey{
		P: new(big.Int).Set(k.P),
		Q: new(big.Int).Set(k.Q),
		G: new(big.Int).Set(k.G),
		Y: new(big.Int).Set(k.Y),
	}
}

// Std converts back to a crypto/dsa public key.
func (k *DSAPublicKey) Std() *dsa.PublicKey {
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{P: k.P, Q: k.Q, G: k.G},
		Y:          k.Y,
	}
}

// Len returns the bit length of p.
func (k *DSAPublicKey) Len() int {
	if k.P == nil {
		return 0
	}
	return k.P.BitLen()
}

// Bytes returns y left padded to the byte length of p.
func (k *DSAPublicKey) Bytes() []byte {
	if k.P == nil || k.Y == nil {
		return nil
	}
	out := make([]byte, (k.P.BitLen()+7)/8)
	return k.Y.FillBytes(out)
}

// Equal reports whether both keys carry the same parameters.
func (k *DSAPublicKey) Equal(o *DSAPublicKey) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k.P.Cmp(o.P) == 0 && k.Q.Cmp(o.Q) == 0 && k.G.Cmp(o.G) == 0 && k.Y.Cmp(o.Y) == 0
}

// Validate checks the domain parameters and, for a non-zero profile, the
// exact bit lengths of p and q.
func (k *DSAPublicKey) Validate(pr Profile) error {
	if k == nil || k.P == nil || k.Q == nil || k.G == nil || k.Y == nil {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "missing DSA parameter")
	}
	if k.P.Cmp(one) <= 0 || k.Q.Cmp(one) <= 0 {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "p and q must be greater than one")
	}
	if pr.L != 0 && k.P.BitLen() != pr.L {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "p is %d bits, profile wants %d", k.P.BitLen(), pr.L)
	}
	if pr.N != 0 && k.Q.BitLen() != pr.N {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "q is %d bits, profile wants %d", k.Q.BitLen(), pr.N)
	}
	if k.G.Cmp(one) <= 0 || k.G.Cmp(k.P) >= 0 {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "g out of range")
	}
	if k.Y.Cmp(one) <= 0 || k.Y.Cmp(k.P) >= 0 {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "y out of range")
	}
	pm1 := new(big.Int).Sub(k.P, one)
	if new(big.Int).Mod(pm1, k.Q).Sign() != 0 {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "q does not divide p-1")
	}
	if !k.Q.ProbablyPrime(20) {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "q is not prime")
	}
	// g and y must live in the order q subgroup
	if new(big.Int).Exp(k.G, k.Q, k.P).Cmp(one) != 0 {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "g does not generate the order q subgroup")
	}
	if new(big.Int).Exp(k.Y, k.Q, k.P).Cmp(one) != 0 {
		return oops.Wrapf(types.ErrInvalidKeyFormat, "y is not in the order q subgroup")
	}
	return nil
}

// NewVerifier creates a verifier sized from the key parameters.
func (k *DSAPublicKey) NewVerifier() (types.Verifier, error) {
	return k.NewProfileVerifier(Profile{})
}

// NewProfileVerifier creates a verifier that enforces the fixed widths of pr.
func (k *DSAPublicKey) NewProfileVerifier(pr Profile) (*DSAVerifier, error) {
	log.Debug("Creating new DSA verifier")
	if k == nil || k.P == nil || k.Q == nil || k.G == nil || k.Y == nil || k.Q.Sign() <= 0 || k.P.Sign() <= 0 {
		log.Error("Invalid DSA public key")
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "incomplete DSA public key")
	}
	return &DSAVerifier{
		k:       k,
		profile: pr.effective(k),
	}, nil
}

var _ types.SigningPublicKey = (*DSAPublicKey)(nil)
