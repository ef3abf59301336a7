// Package dsa implements DSA signature verification over SHA-1 digests for
// boot image and module gatekeeping.
//
// Keys carry their own domain parameters. A Profile pins the bit lengths of
// p and q; the Classic profile (L=1024, N=160) matches the fixed-width
// key tables boot loaders carry, while the zero Profile sizes
// everything from the key itself.
package dsa

import (
	"crypto/dsa"
	"io"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Profile fixes the bit length of p (L) and q (N). A zero field means
// "whatever the key says".
type Profile struct {
	L int `yaml:"l"`
	N int `yaml:"n"`
}

// Classic is the 1024/160 profile every signature table has used so far.
var Classic = Profile{L: 1024, N: 160}

// IsZero reports whether the profile leaves both widths open.
func (pr Profile) IsZero() bool {
	return pr.L == 0 && pr.N == 0
}

// effective returns the profile widths to use for k, filling open fields
// from the key parameters.
func (pr Profile) effective(k *DSAPublicKey) Profile {
	out := pr
	if out.L == 0 {
		out.L = k.P.BitLen()
	}
	if out.N == 0 {
		out.N = roundBits(k.Q.BitLen())
	}
	return out
}

func roundBits(n int) int {
	return (n + 7) &^ 7
}

// sizes maps a profile onto the crypto/dsa parameter sizes it can generate.
func (pr Profile) sizes() (dsa.ParameterSizes, error) {
	switch pr {
	case Profile{L: 1024, N: 160}:
		return dsa.L1024N160, nil
	case Profile{L: 2048, N: 224}:
		return dsa.L2048N224, nil
	case Profile{L: 2048, N: 256}:
		return dsa.L2048N256, nil
	case Profile{L: 3072, N: 256}:
		return dsa.L3072N256, nil
	}
	return 0, oops.Errorf("no parameter generator for L=%d N=%d", pr.L, pr.N)
}

// GenerateKey creates fresh domain parameters and a key pair for the given
// profile. A zero profile generates a Classic key.
func GenerateKey(pr Profile, rand io.Reader) (*DSAPrivateKey, error) {
	if pr.IsZero() {
		pr = Classic
	}
	sizes, err := pr.sizes()
	if err != nil {
		return nil, err
	}
	log.WithFields(logger.Fields{"L": pr.L, "N": pr.N}).Debug("Generating DSA key pair")
	priv := new(dsa.PrivateKey)
	if err := dsa.GenerateParameters(&priv.Parameters, rand, sizes); err != nil {
		log.WithError(err).Error("Failed to generate DSA parameters")
		return nil, oops.Wrapf(err, "generating DSA parameters")
	}
	if err := dsa.GenerateKey(priv, rand); err != nil {
		log.WithError(err).Error("Failed to generate DSA key pair")
		return nil, oops.Wrapf(err, "generating DSA key")
	}
	log.Debug("DSA key pair generated successfully")
	return FromStdPrivate(priv), nil
}
