package bundle

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"io"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/samber/oops"
)

// maxPrealloc caps the buffer Verify reserves up front; larger content grows
// it as it arrives.
const maxPrealloc = 1 << 20

// Verifier checks a digest against a signature made by the key at idx.
// *keys.Table implements it.
type Verifier interface {
	Verify(digest, sig []byte, idx int) error
	SignatureSize() int
}

// VerifyTo streams the content into w while hashing it, then checks the
// trailing signature. Whatever reached w must be discarded unless VerifyTo
// returns nil. A bundle can only be verified once.
func (b *Bundle) VerifyTo(v Verifier, w io.Writer) error {
	if b.used {
		return oops.Errorf("bundle content already consumed")
	}
	b.used = true

	if want := v.SignatureSize(); int(b.SignatureLength) != want {
		return oops.Wrapf(types.ErrBadSignatureSize, "bundle signature is %d bytes, key table uses %d", b.SignatureLength, want)
	}

	h := sha1.New()
	h.Write(b.raw)
	n, err := io.CopyN(io.MultiWriter(h, w), b.reader, int64(b.ContentLength))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return oops.Wrapf(ErrMissingContent, "got %d of %d content bytes", n, b.ContentLength)
		}
		return oops.Wrapf(err, "reading bundle content")
	}

	sig := make([]byte, b.SignatureLength)
	if err := readField(b.reader, sig, ErrMissingSignature); err != nil {
		return err
	}
	var extra [1]byte
	switch _, err := io.ReadFull(b.reader, extra[:]); {
	case err == nil:
		return ErrTrailingData
	case !errors.Is(err, io.EOF):
		return oops.Wrapf(err, "reading past bundle signature")
	}

	if err := v.Verify(h.Sum(nil), sig, b.KeyIndex); err != nil {
		log.WithError(err).WithField("key_index", b.KeyIndex).Debug("Bundle signature rejected")
		return err
	}
	return nil
}

// Verify reads and verifies the whole bundle, returning the content only if
// the signature is good.
func (b *Bundle) Verify(v Verifier) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(min(b.ContentLength, maxPrealloc)))
	if err := b.VerifyTo(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
