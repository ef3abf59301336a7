package dsa

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/crypto/rand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Signature over the all-zero digest made with testdata/rootfs.key by
// `openssl pkeyutl -sign`.
const zeroDigestSigDER = "302b02130c3cf775a0c44fe7cff81b64e1936feb145252021444cf520dbc1ac4c3bebf5e8485dc8ee8baf9d6e1"

// Signature over SHA1("kernel image v1") made with testdata/kernel.key.
const kernelImageSigDER = "302c021409066601d858ee1fcd3814030fadbb51296a5db9021428e3da683c20aec6e3985b2955854501c5506e11"

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func loadPublic(t *testing.T, name string) *DSAPublicKey {
	t.Helper()
	keys, err := ParsePublicKeysPEM(readTestdata(t, name))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	return keys[0]
}

func classicVerifier(t *testing.T, k *DSAPublicKey) *DSAVerifier {
	t.Helper()
	v, err := k.NewProfileVerifier(Classic)
	require.NoError(t, err)
	return v
}

func wireFromDER(t *testing.T, derHex string) []byte {
	t.Helper()
	der, err := hex.DecodeString(derHex)
	require.NoError(t, err)
	sig, err := ParseDER(der)
	require.NoError(t, err)
	wire, err := sig.Marshal(160)
	require.NoError(t, err)
	return wire
}

func TestVerifyZeroDigestVector(t *testing.T) {
	v := classicVerifier(t, loadPublic(t, "rootfs.pub.pem"))
	sig := wireFromDER(t, zeroDigestSigDER)
	require.Len(t, sig, ClassicSignatureSize)

	assert.NoError(t, v.VerifyHash(make([]byte, 20), sig))

	ff := bytes.Repeat([]byte{0xff}, 20)
	err := v.VerifyHash(ff, sig)
	assert.ErrorIs(t, err, types.ErrInvalidSignature)
	assert.False(t, types.IsFatal(err))
}

func TestVerifyKernelImageVector(t *testing.T) {
	v := classicVerifier(t, loadPublic(t, "kernel.pub.pem"))
	sig := wireFromDER(t, kernelImageSigDER)

	assert.NoError(t, v.Verify([]byte("kernel image v1"), sig))
	assert.ErrorIs(t, v.Verify([]byte("kernel image v2"), sig), types.ErrInvalidSignature)

	// right signature, wrong key
	other := classicVerifier(t, loadPublic(t, "rootfs.pub.pem"))
	assert.Error(t, other.Verify([]byte("kernel image v1"), sig))
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, name := range []string{"rootfs.key", "kernel.key", "kernel_legacy.key"} {
		t.Run(name, func(t *testing.T) {
			priv, err := ParsePrivateKeyPEM(readTestdata(t, name))
			require.NoError(t, err)
			require.NoError(t, priv.Public().Validate(Classic))

			signer, err := priv.NewSigner()
			require.NoError(t, err)
			v := classicVerifier(t, priv.Public())

			for i := 0; i < 8; i++ {
				msg := make([]byte, 64+i*17)
				_, err := rand.Read(msg)
				require.NoError(t, err)

				sig, err := signer.Sign(msg)
				require.NoError(t, err)
				assert.Len(t, sig, ClassicSignatureSize)
				assert.NoError(t, v.Verify(msg, sig))

				msg[0] ^= 0x01
				assert.ErrorIs(t, v.Verify(msg, sig), types.ErrInvalidSignature)
			}
		})
	}
}

func TestBitFlipRejected(t *testing.T) {
	priv, err := ParsePrivateKeyPEM(readTestdata(t, "rootfs.key"))
	require.NoError(t, err)
	signer, err := priv.NewSigner()
	require.NoError(t, err)
	v := classicVerifier(t, priv.Public())

	digest := sha1.Sum([]byte("rootfs.img"))
	wire, err := signer.SignHash(digest[:])
	require.NoError(t, err)
	sig, err := ParseSignature(wire, 160)
	require.NoError(t, err)
	require.NoError(t, v.VerifySignature(digest[:], sig))

	q := priv.Q
	for _, which := range []string{"r", "s"} {
		for bit := 0; bit < q.BitLen(); bit++ {
			mutated := &Signature{R: new(big.Int).Set(sig.R), S: new(big.Int).Set(sig.S)}
			target := mutated.R
			if which == "s" {
				target = mutated.S
			}
			target.SetBit(target, bit, target.Bit(bit)^1)
			if target.Sign() == 0 || target.Cmp(q) >= 0 {
				continue
			}
			err := v.VerifySignature(digest[:], mutated)
			if !assert.ErrorIs(t, err, types.ErrInvalidSignature, "%s bit %d", which, bit) {
				return
			}
		}
	}
}

func TestMalformedSignatures(t *testing.T) {
	k := loadPublic(t, "rootfs.pub.pem")
	v := classicVerifier(t, k)
	digest := make([]byte, 20)
	good := wireFromDER(t, zeroDigestSigDER)
	sig, err := ParseSignature(good, 160)
	require.NoError(t, err)

	tests := []struct {
		name string
		sig  *Signature
	}{
		{"r zero", &Signature{R: big.NewInt(0), S: sig.S}},
		{"s zero", &Signature{R: sig.R, S: big.NewInt(0)}},
		{"r equals q", &Signature{R: new(big.Int).Set(k.Q), S: sig.S}},
		{"s above q", &Signature{R: sig.R, S: new(big.Int).Add(k.Q, big.NewInt(5))}},
		{"negative r", &Signature{R: big.NewInt(-3), S: sig.S}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.VerifySignature(digest, tt.sig)
			assert.ErrorIs(t, err, types.ErrMalformedSignature)
			assert.False(t, types.IsFatal(err))
		})
	}

	// zero length prefix on the wire decodes as r = 0
	wire := append([]byte{0x00, 0x01, 0x01}, make([]byte, 41)...)
	assert.ErrorIs(t, v.VerifyHash(digest, wire), types.ErrMalformedSignature)

	wire = append([]byte{0x01, 0x00, 0x01, 0x01}, make([]byte, 40)...)
	assert.ErrorIs(t, v.VerifyHash(digest, wire), types.ErrMalformedSignature)
}

func TestParseSignatureStructure(t *testing.T) {
	good := wireFromDER(t, zeroDigestSigDER)
	// r is 19 bytes in this vector, s is 20
	assert.Equal(t, byte(19), good[0])
	assert.Equal(t, byte(20), good[20])

	tests := []struct {
		name    string
		buf     []byte
		sizeErr bool
	}{
		{"empty", nil, false},
		{"truncated r", []byte{0x14, 0x01, 0x02}, false},
		{"missing s", append([]byte{0x01, 0x01}, make([]byte, 0)...), false},
		{"r too long", append([]byte{22}, make([]byte, 22)...), false},
		{"oversized", make([]byte, 45), true},
		{"dirty padding", func() []byte {
			b := append([]byte(nil), good...)
			b[len(b)-1] = 0x01
			return b
		}(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSignature(tt.buf, 160)
			assert.ErrorIs(t, err, types.ErrMalformedSignature)
			if tt.sizeErr {
				assert.ErrorIs(t, err, types.ErrBadSignatureSize)
			}
		})
	}

	// unpadded input is refused
	_, err := ParseSignature(good[:1+19+1+20], 160)
	assert.ErrorIs(t, err, types.ErrBadSignatureSize)

	sig, err := ParseSignature(good, 160)
	require.NoError(t, err)
	again, err := sig.Marshal(160)
	require.NoError(t, err)
	assert.Equal(t, good, again)
}

func TestParseSignatureRequiresMinimalIntegers(t *testing.T) {
	good := wireFromDER(t, zeroDigestSigDER)
	require.Zero(t, good[1]&0x80, "19 byte r has its top bit clear")

	pad := func(b []byte) []byte {
		return append(b, make([]byte, ClassicSignatureSize-len(b))...)
	}
	// same r with a redundant leading zero
	r := good[1:20]
	s := good[21:41]
	padded := pad(append(append(append([]byte{20, 0x00}, r...), 20), s...))

	tests := []struct {
		name string
		buf  []byte
	}{
		{"redundant zero on r", padded},
		{"top bit without zero", pad([]byte{1, 0x80, 1, 0x01})},
		{"redundant zero on s", pad([]byte{1, 0x01, 2, 0x00, 0x01})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSignature(tt.buf, 160)
			assert.ErrorIs(t, err, types.ErrMalformedSignature)
		})
	}

	k := loadPublic(t, "rootfs.pub.pem")
	assert.ErrorIs(t, classicVerifier(t, k).VerifyHash(make([]byte, 20), padded), types.ErrMalformedSignature)

	// zero needs its single byte
	sig, err := ParseSignature(pad([]byte{1, 0x00, 1, 0x01}), 160)
	require.NoError(t, err)
	assert.Zero(t, sig.R.Sign())
}

func TestMarshalHighBitValues(t *testing.T) {
	r, _ := new(big.Int).SetString("ffffffffffffffffffffffffffffffffffffff01", 16)
	s := big.NewInt(0x80)
	wire, err := (&Signature{R: r, S: s}).Marshal(160)
	require.NoError(t, err)
	require.Len(t, wire, ClassicSignatureSize)
	assert.Equal(t, byte(21), wire[0])
	assert.Equal(t, byte(0), wire[1])
	assert.Equal(t, byte(2), wire[22])
	assert.Equal(t, []byte{0x00, 0x80}, wire[23:25])

	back, err := ParseSignature(wire, 160)
	require.NoError(t, err)
	assert.Zero(t, back.R.Cmp(r))
	assert.Zero(t, back.S.Cmp(s))

	_, err = (&Signature{R: big.NewInt(0), S: s}).Marshal(160)
	assert.ErrorIs(t, err, types.ErrMalformedSignature)
}

func TestDERAndRawConversions(t *testing.T) {
	der, err := hex.DecodeString(kernelImageSigDER)
	require.NoError(t, err)
	sig, err := ParseDER(der)
	require.NoError(t, err)

	again, err := sig.MarshalDER()
	require.NoError(t, err)
	assert.Equal(t, der, again)

	raw, err := sig.MarshalRaw(160)
	require.NoError(t, err)
	assert.Len(t, raw, 40)
	back, err := ParseRaw(raw, 160)
	require.NoError(t, err)
	assert.Zero(t, back.R.Cmp(sig.R))
	assert.Zero(t, back.S.Cmp(sig.S))

	_, err = ParseRaw(raw[:39], 160)
	assert.ErrorIs(t, err, types.ErrBadSignatureSize)
	_, err = ParseDER(der[:len(der)-1])
	assert.ErrorIs(t, err, types.ErrMalformedSignature)
}

func TestBadDigestSize(t *testing.T) {
	v := classicVerifier(t, loadPublic(t, "rootfs.pub.pem"))
	sig := wireFromDER(t, zeroDigestSigDER)
	assert.ErrorIs(t, v.VerifyHash(make([]byte, 32), sig), types.ErrBadDigestSize)
	assert.ErrorIs(t, v.VerifyHash(nil, sig), types.ErrBadDigestSize)
}

func TestArithmeticErrors(t *testing.T) {
	// q is composite so s = 5 has no inverse modulo 15
	k := &DSAPublicKey{P: big.NewInt(31), Q: big.NewInt(15), G: big.NewInt(2), Y: big.NewInt(4)}
	v, err := k.NewProfileVerifier(Profile{})
	require.NoError(t, err)
	err = v.VerifySignature(make([]byte, 20), &Signature{R: big.NewInt(1), S: big.NewInt(5)})
	assert.ErrorIs(t, err, types.ErrArithmetic)
	assert.True(t, types.IsFatal(err))

	// a 1024 bit key does not fit a 512 bit fixed-width profile
	rootfs := loadPublic(t, "rootfs.pub.pem")
	narrow, err := rootfs.NewProfileVerifier(Profile{L: 512, N: 160})
	require.NoError(t, err)
	err = narrow.VerifyHash(make([]byte, 20), wireFromDER(t, zeroDigestSigDER))
	assert.ErrorIs(t, err, types.ErrArithmetic)
}

func TestMultiExpMatchesSeparateExponentiation(t *testing.T) {
	k := loadPublic(t, "kernel.pub.pem")
	for i := 0; i < 16; i++ {
		a, err := rand.CryptoInt(rand.Reader, k.Q)
		require.NoError(t, err)
		b, err := rand.CryptoInt(rand.Reader, k.Q)
		require.NoError(t, err)

		want := new(big.Int).Exp(k.G, a, k.P)
		want.Mul(want, new(big.Int).Exp(k.Y, b, k.P))
		want.Mod(want, k.P)

		got := multiExp(k.G, a, k.Y, b, k.P, 160)
		assert.Zero(t, want.Cmp(got), "iteration %d", i)
	}
	assert.Zero(t, multiExp(k.G, big.NewInt(0), k.Y, big.NewInt(0), k.P, 160).Cmp(big.NewInt(1)))
}

func TestValidate(t *testing.T) {
	k := loadPublic(t, "rootfs.pub.pem")
	require.NoError(t, k.Validate(Classic))
	require.NoError(t, k.Validate(Profile{}))
	assert.Equal(t, 1024, k.Len())
	assert.Len(t, k.Bytes(), 128)

	assert.ErrorIs(t, k.Validate(Profile{L: 2048, N: 256}), types.ErrInvalidKeyFormat)

	bad := *k
	bad.G = big.NewInt(1)
	assert.ErrorIs(t, bad.Validate(Classic), types.ErrInvalidKeyFormat)

	bad = *k
	bad.Y = new(big.Int).Add(k.Y, big.NewInt(1))
	assert.ErrorIs(t, bad.Validate(Classic), types.ErrInvalidKeyFormat)

	bad = *k
	bad.Q = new(big.Int).Add(k.Q, big.NewInt(2))
	assert.ErrorIs(t, bad.Validate(Profile{}), types.ErrInvalidKeyFormat)

	var missing *DSAPublicKey
	assert.ErrorIs(t, missing.Validate(Classic), types.ErrInvalidKeyFormat)
}

func TestPEMRoundTrip(t *testing.T) {
	priv, err := ParsePrivateKeyPEM(readTestdata(t, "rootfs.key"))
	require.NoError(t, err)
	pub := loadPublic(t, "rootfs.pub.pem")
	assert.True(t, pub.Equal(priv.Public()))

	pemBytes, err := pub.MarshalPEM()
	require.NoError(t, err)
	assert.Equal(t, readTestdata(t, "rootfs.pub.pem"), pemBytes)

	privPEM, err := priv.MarshalPEM()
	require.NoError(t, err)
	back, err := ParsePrivateKeyPEM(privPEM)
	require.NoError(t, err)
	assert.Zero(t, back.X.Cmp(priv.X))
	assert.True(t, back.Public().Equal(pub))

	both := append(readTestdata(t, "rootfs.pub.pem"), readTestdata(t, "kernel.pub.pem")...)
	keys, err := ParsePublicKeysPEM(both)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.True(t, keys[0].Equal(pub))

	_, err = ParsePublicKeysPEM([]byte("not pem"))
	assert.ErrorIs(t, err, types.ErrInvalidKeyFormat)
	_, err = ParsePrivateKeyPEM(readTestdata(t, "rootfs.pub.pem"))
	assert.ErrorIs(t, err, types.ErrInvalidKeyFormat)
}

func TestNewVerifierRejectsIncompleteKey(t *testing.T) {
	_, err := (&DSAPublicKey{P: big.NewInt(23)}).NewVerifier()
	assert.True(t, errors.Is(err, types.ErrInvalidKeyFormat))
}
