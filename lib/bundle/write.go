package bundle

import (
	"crypto/sha1"
	"io"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/samber/oops"
)

// Write signs content and writes a complete bundle to w. hdr supplies the
// content type, key index and version; lengths are filled in from content
// and signer.
func Write(w io.Writer, hdr Header, content []byte, signer types.Signer) error {
	size := signer.SignatureSize()
	if size <= 0 || size > 0xffff {
		return oops.Wrapf(types.ErrBadSignatureSize, "signer reports %d byte signatures", size)
	}
	hdr.SignatureLength = uint16(size)
	hdr.ContentLength = uint64(len(content))
	raw, err := hdr.marshal()
	if err != nil {
		return err
	}

	h := sha1.New()
	h.Write(raw)
	h.Write(content)
	sig, err := signer.SignHash(h.Sum(nil))
	if err != nil {
		return oops.Wrapf(err, "signing bundle")
	}
	if len(sig) != size {
		return oops.Wrapf(types.ErrBadSignatureSize, "signer produced %d bytes, promised %d", len(sig), size)
	}

	for _, part := range [][]byte{raw, content, sig} {
		if _, err := w.Write(part); err != nil {
			return oops.Wrapf(err, "writing bundle")
		}
	}
	log.WithField("content_type", hdr.ContentType).WithField("key_index", hdr.KeyIndex).Debug("Wrote bundle")
	return nil
}
