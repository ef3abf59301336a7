package types

import "errors"

// Sentinel errors are plain values so they can be matched with errors.Is
// after being wrapped with oops.Wrapf further up the stack.
var (
	ErrBadSignatureSize = errors.New("bad signature size")
	ErrBadDigestSize    = errors.New("bad digest size")
	ErrInvalidKeyFormat = errors.New("invalid key format")
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMalformedSignature means r or s is outside (0, q) or the encoding is
	// broken. It is returned before any modular arithmetic happens.
	ErrMalformedSignature = errors.New("malformed signature")
	// ErrUnknownKey is returned for a key index outside the key table.
	ErrUnknownKey = errors.New("unknown key index")
	// ErrArithmetic is an internal big integer failure. It never means the
	// signature is valid, and callers should abort rather than soft reject.
	ErrArithmetic = errors.New("arithmetic error")
	// ErrRejected is returned when a blob is not admitted by the hash gate.
	ErrRejected = errors.New("rejected")
)

// IsFatal reports whether err is an internal failure rather than a plain
// verification failure.
func IsFatal(err error) bool {
	return errors.Is(err, ErrArithmetic)
}
