package dsa

import (
	"crypto/sha1"
	"math/big"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// DSAVerifier checks signatures against one public key. It holds no mutable
// state and is safe for concurrent use.
type DSAVerifier struct {
	k       *DSAPublicKey
	profile Profile
}

// SignatureSize is the wire size this verifier expects.
func (v *DSAVerifier) SignatureSize() int {
	return SignatureSize(v.profile.N)
}

// Verify hashes data with SHA-1 and verifies the result.
func (v *DSAVerifier) Verify(data, sig []byte) error {
	log.WithFields(logger.Fields{
		"data_length": len(data),
		"sig_length":  len(sig),
	}).Debug("Verifying DSA signature")
	h := sha1.Sum(data)
	return v.VerifyHash(h[:], sig)
}

// VerifyHash verifies a wire format signature over a SHA-1 digest.
func (v *DSAVerifier) VerifyHash(h, sig []byte) error {
	log.WithFields(logger.Fields{
		"hash_length": len(h),
		"sig_length":  len(sig),
	}).Debug("Verifying DSA signature hash")
	if len(h) != sha1.Size {
		log.Debug("Bad digest size")
		return oops.Wrapf(types.ErrBadDigestSize, "digest is %d bytes, want %d", len(h), sha1.Size)
	}
	parsed, err := ParseSignature(sig, v.profile.N)
	if err != nil {
		log.WithError(err).Debug("Malformed DSA signature")
		return err
	}
	return v.VerifySignature(h, parsed)
}

// VerifySignature runs the DSA verification equation for a decoded
// signature. The digest is used directly as a big-endian integer.
func (v *DSAVerifier) VerifySignature(h []byte, sig *Signature) error {
	k := v.k
	if sig == nil || sig.R == nil || sig.S == nil {
		return malformed("missing r or s")
	}
	if sig.R.Sign() <= 0 || sig.S.Sign() <= 0 || sig.R.Cmp(k.Q) >= 0 || sig.S.Cmp(k.Q) >= 0 {
		log.Debug("DSA signature outside (0, q)")
		return malformed("r and s must lie in (0, q)")
	}
	if k.P.BitLen() > v.profile.L || k.Q.BitLen() > v.profile.N {
		log.WithFields(logger.Fields{
			"p_bits": k.P.BitLen(),
			"q_bits": k.Q.BitLen(),
			"L":      v.profile.L,
			"N":      v.profile.N,
		}).Debug("DSA key wider than verifier profile")
		return oops.Wrapf(types.ErrArithmetic, "key parameters exceed the %d/%d profile", v.profile.L, v.profile.N)
	}

	w := new(big.Int).ModInverse(sig.S, k.Q)
	if w == nil {
		log.Debug("s has no inverse modulo q")
		return oops.Wrapf(types.ErrArithmetic, "s has no inverse modulo q")
	}
	u1 := new(big.Int).SetBytes(h)
	u1.Mul(u1, w)
	u1.Mod(u1, k.Q)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, k.Q)

	t := multiExp(k.G, u1, k.Y, u2, k.P, v.profile.N)
	t.Mod(t, k.Q)

	if t.Cmp(sig.R) != 0 {
		log.Debug("Invalid DSA signature")
		return types.ErrInvalidSignature
	}
	log.Debug("DSA signature verified successfully")
	return nil
}

// multiExp computes g^a * y^b mod p in one left-to-right pass over bits
// exponent bits. Every step squares once and multiplies once by an entry of
// {1, g, y, g*y}, so the operation sequence does not depend on a or b.
func multiExp(g, a, y, b, p *big.Int, bits int) *big.Int {
	if n := a.BitLen(); n > bits {
		bits = n
	}
	if n := b.BitLen(); n > bits {
		bits = n
	}
	gy := new(big.Int).Mul(g, y)
	gy.Mod(gy, p)
	table := [4]*big.Int{
		big.NewInt(1),
		new(big.Int).Mod(g, p),
		new(big.Int).Mod(y, p),
		gy,
	}
	acc := big.NewInt(1)
	for i := bits - 1; i >= 0; i-- {
		acc.Mul(acc, acc)
		acc.Mod(acc, p)
		acc.Mul(acc, table[a.Bit(i)|b.Bit(i)<<1])
		acc.Mod(acc, p)
	}
	return acc
}

var _ types.Verifier = (*DSAVerifier)(nil)
