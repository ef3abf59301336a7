package keys

import (
	"bytes"

	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/samber/oops"
)

// PEMSource is one PEM file. A file holding several keys contributes them
// in order; the second and later keys get "#n" appended to the name.
type PEMSource struct {
	Name string
	Data []byte
}

// FromPEM builds a table from PEM sources.
func FromPEM(profile dsa.Profile, sources ...PEMSource) (*Table, error) {
	var entries []Entry
	for i, src := range sources {
		keys, err := dsa.ParsePublicKeysPEM(src.Data)
		if err != nil {
			return nil, oops.Wrapf(err, "PEM source %d (%s)", i, src.Name)
		}
		for j, k := range keys {
			name := src.Name
			if name != "" && j > 0 {
				name = name + "#" + itoa(j)
			}
			entries = append(entries, Entry{Name: name, Key: k})
		}
	}
	return NewTable(profile, entries...)
}

// MarshalPEM writes every key of the table as PEM, in index order.
func (t *Table) MarshalPEM() ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range t.entries {
		data, err := e.Key.MarshalPEM()
		if err != nil {
			return nil, oops.Wrapf(err, "key %d", i)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
