package keys

import (
	"encoding/hex"
	"io"
	"math/big"

	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type yamlKey struct {
	Name string `yaml:"name"`
	P    string `yaml:"p"`
	Q    string `yaml:"q"`
	G    string `yaml:"g"`
	Y    string `yaml:"y"`
}

type yamlTable struct {
	Profile dsa.Profile `yaml:"profile"`
	Keys    []yamlKey   `yaml:"keys"`
}

func hexInt(field, s string) (*big.Int, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) == 0 {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "parameter %s is not hex", field)
	}
	return new(big.Int).SetBytes(raw), nil
}

// ReadYAML parses the YAML key table. A non-zero profile argument overrides
// the profile stored in the document.
func ReadYAML(r io.Reader, profile dsa.Profile) (*Table, error) {
	var doc yamlTable
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, oops.Wrapf(err, "decoding YAML key table")
	}
	if profile.IsZero() {
		profile = doc.Profile
	}
	entries := make([]Entry, 0, len(doc.Keys))
	for i, k := range doc.Keys {
		var vals [4]*big.Int
		for j, s := range []string{k.P, k.Q, k.G, k.Y} {
			v, err := hexInt(paramNames[j], s)
			if err != nil {
				return nil, oops.Wrapf(err, "key %d", i)
			}
			vals[j] = v
		}
		entries = append(entries, Entry{
			Name: k.Name,
			Key:  &dsa.DSAPublicKey{P: vals[0], Q: vals[1], G: vals[2], Y: vals[3]},
		})
	}
	return NewTable(profile, entries...)
}

// WriteYAML writes the table as YAML.
func (t *Table) WriteYAML(w io.Writer) error {
	doc := yamlTable{Profile: t.profile}
	for _, e := range t.entries {
		doc.Keys = append(doc.Keys, yamlKey{
			Name: e.Name,
			P:    hex.EncodeToString(e.Key.P.Bytes()),
			Q:    hex.EncodeToString(e.Key.Q.Bytes()),
			G:    hex.EncodeToString(e.Key.G.Bytes()),
			Y:    hex.EncodeToString(e.Key.Y.Bytes()),
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return oops.Wrapf(err, "encoding YAML key table")
	}
	return enc.Close()
}
