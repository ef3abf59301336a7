package dsa

import (
	"errors"
	"math/big"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/samber/oops"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// ClassicSignatureSize is the wire size of a signature for a 160 bit q.
const ClassicSignatureSize = 44

// Signature is a DSA (r, s) pair.
//
// On the wire both values are written as a length byte followed by the
// minimal big-endian encoding of the integer, with a leading zero byte only
// when the top bit is set. The pair is zero padded to SignatureSize.
type Signature struct {
	R, S *big.Int
}

// SignatureSize returns the padded wire size for a q of qBits bits.
func SignatureSize(qBits int) int {
	return 2 * (1 + maxIntLen(qBits))
}

// maxIntLen is the longest integer encoding allowed for a q of qBits bits.
func maxIntLen(qBits int) int {
	return roundBits(qBits)/8 + 1
}

func malformed(format string, args ...any) error {
	return oops.Wrapf(types.ErrMalformedSignature, format, args...)
}

// badSize matches both ErrMalformedSignature and ErrBadSignatureSize.
func badSize(format string, args ...any) error {
	return oops.Wrapf(errors.Join(types.ErrMalformedSignature, types.ErrBadSignatureSize), format, args...)
}

// minimalInt reports whether b is the shortest encoding of a non-negative
// integer: no redundant leading zero, and a leading zero whenever the top
// bit would otherwise be set.
func minimalInt(b []byte) bool {
	if b[0]&0x80 != 0 {
		return false
	}
	return len(b) == 1 || b[0] != 0 || b[1]&0x80 != 0
}

// ParseSignature decodes the length prefixed wire format. The buffer must be
// exactly SignatureSize(qBits) bytes and each integer minimally encoded, so
// every (r, s) pair has one encoding. Range checks against q happen in the
// verifier.
func ParseSignature(buf []byte, qBits int) (*Signature, error) {
	if size := SignatureSize(qBits); len(buf) != size {
		return nil, badSize("signature is %d bytes, want %d", len(buf), size)
	}
	in := cryptobyte.String(buf)
	var rb, sb cryptobyte.String
	if !in.ReadUint8LengthPrefixed(&rb) {
		return nil, malformed("truncated r")
	}
	if !in.ReadUint8LengthPrefixed(&sb) {
		return nil, malformed("truncated s")
	}
	limit := maxIntLen(qBits)
	if len(rb) == 0 || len(rb) > limit {
		return nil, malformed("r length %d outside [1, %d]", len(rb), limit)
	}
	if len(sb) == 0 || len(sb) > limit {
		return nil, malformed("s length %d outside [1, %d]", len(sb), limit)
	}
	if !minimalInt(rb) {
		return nil, malformed("r is not minimally encoded")
	}
	if !minimalInt(sb) {
		return nil, malformed("s is not minimally encoded")
	}
	for _, b := range in {
		if b != 0 {
			return nil, malformed("non-zero padding")
		}
	}
	return &Signature{
		R: new(big.Int).SetBytes(rb),
		S: new(big.Int).SetBytes(sb),
	}, nil
}

// Marshal encodes the signature in the padded wire format for a q of qBits
// bits.
func (sig *Signature) Marshal(qBits int) ([]byte, error) {
	if sig.R == nil || sig.S == nil || sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return nil, malformed("r and s must be positive")
	}
	limit := maxIntLen(qBits)
	size := SignatureSize(qBits)
	b := cryptobyte.NewFixedBuilder(make([]byte, 0, size))
	for _, v := range []*big.Int{sig.R, sig.S} {
		enc := intBytes(v)
		if len(enc) > limit {
			return nil, malformed("value is %d bytes, limit %d", len(enc), limit)
		}
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(enc)
		})
	}
	out, err := b.Bytes()
	if err != nil {
		return nil, oops.Wrapf(err, "encoding signature")
	}
	return append(out, make([]byte, size-len(out))...), nil
}

// intBytes is the minimal big-endian encoding of a positive integer, with a
// leading zero when the top bit is set.
func intBytes(v *big.Int) []byte {
	raw := v.Bytes()
	if len(raw) > 0 && raw[0]&0x80 != 0 {
		return append([]byte{0}, raw...)
	}
	return raw
}

// ParseDER decodes an ASN.1 DER SEQUENCE { r INTEGER, s INTEGER }, the
// format produced by most signing tools.
func ParseDER(der []byte) (*Signature, error) {
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	r, s := new(big.Int), new(big.Int)
	if !input.ReadASN1(&inner, cbasn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) || !inner.Empty() {
		return nil, malformed("invalid DER signature")
	}
	return &Signature{R: r, S: s}, nil
}

// MarshalDER encodes the signature as an ASN.1 DER sequence.
func (sig *Signature) MarshalDER() ([]byte, error) {
	if sig.R == nil || sig.S == nil {
		return nil, malformed("missing r or s")
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(sig.R)
		b.AddASN1BigInt(sig.S)
	})
	return b.Bytes()
}

// ParseRaw decodes the fixed r||s layout where each half is exactly the
// byte length of q (40 bytes for a 160 bit q).
func ParseRaw(buf []byte, qBits int) (*Signature, error) {
	half := roundBits(qBits) / 8
	if len(buf) != 2*half {
		return nil, badSize("raw signature is %d bytes, want %d", len(buf), 2*half)
	}
	return &Signature{
		R: new(big.Int).SetBytes(buf[:half]),
		S: new(big.Int).SetBytes(buf[half:]),
	}, nil
}

// MarshalRaw encodes the fixed r||s layout.
func (sig *Signature) MarshalRaw(qBits int) ([]byte, error) {
	half := roundBits(qBits) / 8
	if sig.R == nil || sig.S == nil || sig.R.Sign() < 0 || sig.S.Sign() < 0 ||
		len(sig.R.Bytes()) > half || len(sig.S.Bytes()) > half {
		return nil, malformed("value does not fit %d bytes", half)
	}
	out := make([]byte, 2*half)
	sig.R.FillBytes(out[:half])
	sig.S.FillBytes(out[half:])
	return out, nil
}
