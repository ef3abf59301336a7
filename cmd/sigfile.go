package cmd

import (
	"os"
	"strconv"

	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/keys"
	"github.com/samber/oops"
)

// Signature file encodings accepted by --sig-format.
const (
	sigWire = "wire"
	sigDER  = "der"
	sigRaw  = "raw"
)

// toWire converts a signature file into the padded wire format.
func toWire(data []byte, format string, qBits int) ([]byte, error) {
	switch format {
	case sigWire:
		return data, nil
	case sigDER:
		sig, err := dsa.ParseDER(data)
		if err != nil {
			return nil, err
		}
		return sig.Marshal(qBits)
	case sigRaw:
		sig, err := dsa.ParseRaw(data, qBits)
		if err != nil {
			return nil, err
		}
		return sig.Marshal(qBits)
	}
	return nil, oops.Errorf("unknown signature format %q", format)
}

// fromWire converts a wire signature for writing.
func fromWire(wire []byte, format string, qBits int) ([]byte, error) {
	if format == sigWire {
		return wire, nil
	}
	sig, err := dsa.ParseSignature(wire, qBits)
	if err != nil {
		return nil, err
	}
	switch format {
	case sigDER:
		return sig.MarshalDER()
	case sigRaw:
		return sig.MarshalRaw(qBits)
	}
	return nil, oops.Errorf("unknown signature format %q", format)
}

// resolveKey accepts an index or a key name.
func resolveKey(table *keys.Table, key string) (int, error) {
	if idx, err := strconv.Atoi(key); err == nil {
		return idx, nil
	}
	return table.Index(key)
}

func loadSigner(path string) (*dsa.DSAPrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Wrapf(err, "reading signing key")
	}
	return dsa.ParsePrivateKeyPEM(data)
}
