package dsa

import (
	"crypto/dsa"
	"crypto/sha1"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/crypto/rand"
	"github.com/samber/oops"
)

type DSASigner struct {
	k *dsa.PrivateKey
	n int
}

// SignatureSize is the length of every signature this signer emits.
func (ds *DSASigner) SignatureSize() int {
	return SignatureSize(ds.n)
}

func (ds *DSASigner) Sign(data []byte) (sig []byte, err error) {
	log.WithField("data_length", len(data)).Debug("Signing data with DSA")
	h := sha1.Sum(data)
	return ds.SignHash(h[:])
}

// SignHash signs a SHA-1 digest and returns the padded wire format.
func (ds *DSASigner) SignHash(h []byte) (sig []byte, err error) {
	log.WithField("hash_length", len(h)).Debug("Signing hash with DSA")
	if len(h) != sha1.Size {
		return nil, oops.Wrapf(types.ErrBadDigestSize, "digest is %d bytes, want %d", len(h), sha1.Size)
	}
	r, s, err := dsa.Sign(rand.Reader, ds.k, h)
	if err != nil {
		log.WithError(err).Error("Failed to create DSA signature")
		return nil, oops.Wrapf(err, "signing digest")
	}
	sig, err = (&Signature{R: r, S: s}).Marshal(ds.n)
	if err == nil {
		log.WithField("sig_length", len(sig)).Debug("DSA signature created successfully")
	}
	return sig, err
}

var _ types.Signer = (*DSASigner)(nil)
