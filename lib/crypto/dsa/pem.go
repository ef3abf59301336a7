package dsa

import (
	"encoding/asn1"
	"encoding/pem"
	"math/big"

	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

const (
	pemPublicKey        = "PUBLIC KEY"
	pemPrivateKey       = "PRIVATE KEY"
	pemLegacyPrivateKey = "DSA PRIVATE KEY"
)

var oidDSA = asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}

// ParsePublicKeysPEM returns every DSA "PUBLIC KEY" block in data, in order.
// Blocks of other types are skipped; a PUBLIC KEY block that is not DSA is
// an error.
func ParsePublicKeysPEM(data []byte) ([]*DSAPublicKey, error) {
	var keys []*DSAPublicKey
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != pemPublicKey {
			log.WithField("type", block.Type).Debug("Skipping PEM block")
			continue
		}
		k, err := ParsePKIX(block.Bytes)
		if err != nil {
			return nil, oops.Wrapf(err, "parsing public key %d", len(keys))
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "no DSA public key found")
	}
	return keys, nil
}

// ParsePKIX decodes a DER SubjectPublicKeyInfo carrying a DSA key:
// SEQUENCE { SEQUENCE { oid, SEQUENCE { p, q, g } }, BIT STRING { INTEGER y } }
func ParsePKIX(der []byte) (*DSAPublicKey, error) {
	input := cryptobyte.String(der)
	var spki, alg, params cryptobyte.String
	var oid asn1.ObjectIdentifier
	var bits asn1.BitString
	k := &DSAPublicKey{P: new(big.Int), Q: new(big.Int), G: new(big.Int), Y: new(big.Int)}
	if !input.ReadASN1(&spki, cbasn1.SEQUENCE) || !input.Empty() ||
		!spki.ReadASN1(&alg, cbasn1.SEQUENCE) ||
		!alg.ReadASN1ObjectIdentifier(&oid) {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "malformed SubjectPublicKeyInfo")
	}
	if !oid.Equal(oidDSA) {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "public key algorithm %s is not DSA", oid)
	}
	if !alg.ReadASN1(&params, cbasn1.SEQUENCE) ||
		!params.ReadASN1Integer(k.P) ||
		!params.ReadASN1Integer(k.Q) ||
		!params.ReadASN1Integer(k.G) ||
		!spki.ReadASN1BitString(&bits) {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "malformed DSA parameters")
	}
	if bits.BitLength%8 != 0 {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "public key bit string is not byte aligned")
	}
	y := cryptobyte.String(bits.Bytes)
	if !y.ReadASN1Integer(k.Y) || !y.Empty() {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "malformed DSA public value")
	}
	return k, nil
}

// MarshalPKIX encodes the key as a DER SubjectPublicKeyInfo.
func (k *DSAPublicKey) MarshalPKIX() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addAlgorithm(b, k)
		b.AddASN1BitString(func() []byte {
			inner := cryptobyte.NewBuilder(nil)
			inner.AddASN1BigInt(k.Y)
			return inner.BytesOrPanic()
		}())
	})
	return b.Bytes()
}

// MarshalPEM encodes the key as a PEM "PUBLIC KEY" block.
func (k *DSAPublicKey) MarshalPEM() ([]byte, error) {
	der, err := k.MarshalPKIX()
	if err != nil {
		return nil, oops.Wrapf(err, "encoding public key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPublicKey, Bytes: der}), nil
}

func addAlgorithm(b *cryptobyte.Builder, k *DSAPublicKey) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(oidDSA)
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1BigInt(k.P)
			b.AddASN1BigInt(k.Q)
			b.AddASN1BigInt(k.G)
		})
	})
}

// ParsePrivateKeyPEM reads a DSA private key in PKCS#8 ("PRIVATE KEY") or
// the legacy OpenSSL ("DSA PRIVATE KEY") layout.
func ParsePrivateKeyPEM(data []byte) (*DSAPrivateKey, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "no DSA private key found")
		}
		switch block.Type {
		case pemPrivateKey:
			return parsePKCS8(block.Bytes)
		case pemLegacyPrivateKey:
			return parseLegacy(block.Bytes)
		default:
			log.WithFields(logger.Fields{"type": block.Type}).Debug("Skipping PEM block")
		}
	}
}

// PKCS#8: SEQUENCE { version, SEQUENCE { oid, SEQUENCE { p, q, g } }, OCTET STRING { INTEGER x } }
func parsePKCS8(der []byte) (*DSAPrivateKey, error) {
	input := cryptobyte.String(der)
	var seq, alg, params, keyOctets cryptobyte.String
	var version int
	var oid asn1.ObjectIdentifier
	p, q, g, x := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) ||
		!seq.ReadASN1Integer(&version) ||
		!seq.ReadASN1(&alg, cbasn1.SEQUENCE) ||
		!alg.ReadASN1ObjectIdentifier(&oid) ||
		!alg.ReadASN1(&params, cbasn1.SEQUENCE) ||
		!params.ReadASN1Integer(p) ||
		!params.ReadASN1Integer(q) ||
		!params.ReadASN1Integer(g) ||
		!seq.ReadASN1(&keyOctets, cbasn1.OCTET_STRING) ||
		!keyOctets.ReadASN1Integer(x) {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "malformed PKCS#8 DSA key")
	}
	if version != 0 || !oid.Equal(oidDSA) {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "PKCS#8 key is not DSA (oid %s, version %d)", oid, version)
	}
	return NewPrivateKey(p, q, g, x)
}

// legacy: SEQUENCE { version, p, q, g, y, x }
func parseLegacy(der []byte) (*DSAPrivateKey, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	var version int
	p, q, g, y, x := new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) ||
		!seq.ReadASN1Integer(&version) ||
		!seq.ReadASN1Integer(p) ||
		!seq.ReadASN1Integer(q) ||
		!seq.ReadASN1Integer(g) ||
		!seq.ReadASN1Integer(y) ||
		!seq.ReadASN1Integer(x) {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "malformed DSA private key")
	}
	k, err := NewPrivateKey(p, q, g, x)
	if err != nil {
		return nil, err
	}
	if k.Y.Cmp(y) != 0 {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "stored y does not match g^x mod p")
	}
	return k, nil
}

// MarshalPEM encodes the private key as a PKCS#8 "PRIVATE KEY" block.
func (k *DSAPrivateKey) MarshalPEM() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		addAlgorithm(b, &k.DSAPublicKey)
		b.AddASN1(cbasn1.OCTET_STRING, func(b *cryptobyte.Builder) {
			b.AddASN1BigInt(k.X)
		})
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, oops.Wrapf(err, "encoding private key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPrivateKey, Bytes: der}), nil
}
