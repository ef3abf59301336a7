package keys

import (
	"crypto/sha1"
	"fmt"

	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Conventional key indexes.
const (
	RootFSKey = 0
	KernelKey = 1
)

// DefaultNames names keys that arrive without a name.
var DefaultNames = []string{"rootfs", "kernel"}

// Entry is one named record of the table.
type Entry struct {
	Name string
	Key  *dsa.DSAPublicKey
}

// Table is an ordered, read-only set of trusted keys.
type Table struct {
	profile   dsa.Profile
	entries   []Entry
	verifiers []*dsa.DSAVerifier
}

// DefaultName returns the conventional name for index i.
func DefaultName(i int) string {
	if i < len(DefaultNames) {
		return DefaultNames[i]
	}
	return fmt.Sprintf("key%d", i)
}

// NewTable validates every key under profile and builds the table. A zero
// profile is pinned to the widths of the first key so that all records
// share the same L and N.
func NewTable(profile dsa.Profile, entries ...Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "key table is empty")
	}
	first := entries[0].Key
	if first == nil || first.P == nil || first.Q == nil {
		return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "key 0 is incomplete")
	}
	if profile.L == 0 {
		profile.L = first.P.BitLen()
	}
	if profile.N == 0 {
		profile.N = first.Q.BitLen()
	}

	t := &Table{profile: profile}
	seen := make(map[string]bool)
	for i, e := range entries {
		if e.Name == "" {
			e.Name = DefaultName(i)
		}
		if seen[e.Name] {
			return nil, oops.Errorf("duplicate key name %q", e.Name)
		}
		seen[e.Name] = true
		if err := e.Key.Validate(profile); err != nil {
			return nil, oops.Wrapf(err, "key %d (%s)", i, e.Name)
		}
		v, err := e.Key.NewProfileVerifier(profile)
		if err != nil {
			return nil, oops.Wrapf(err, "key %d (%s)", i, e.Name)
		}
		t.entries = append(t.entries, e)
		t.verifiers = append(t.verifiers, v)
	}
	log.WithFields(logger.Fields{
		"at":   "keys.NewTable",
		"keys": len(t.entries),
		"L":    profile.L,
		"N":    profile.N,
	}).Debug("Key table loaded")
	return t, nil
}

// Empty returns a table that trusts no key. Every verification against it
// fails with ErrUnknownKey.
func Empty(profile dsa.Profile) *Table {
	if profile.IsZero() {
		profile = dsa.Classic
	}
	return &Table{profile: profile}
}

// Len returns the number of keys.
func (t *Table) Len() int {
	return len(t.entries)
}

// Profile returns the widths every key in the table shares.
func (t *Table) Profile() dsa.Profile {
	return t.profile
}

// SignatureSize is the wire size of signatures for this table.
func (t *Table) SignatureSize() int {
	return dsa.SignatureSize(t.profile.N)
}

// Entries returns the table records in index order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t *Table) check(idx int) error {
	if idx < 0 || idx >= len(t.entries) {
		return oops.Wrapf(types.ErrUnknownKey, "key index %d, table has %d keys", idx, len(t.entries))
	}
	return nil
}

// Key returns the key at idx.
func (t *Table) Key(idx int) (*dsa.DSAPublicKey, error) {
	if err := t.check(idx); err != nil {
		return nil, err
	}
	return t.entries[idx].Key, nil
}

// Name returns the name of the key at idx.
func (t *Table) Name(idx int) (string, error) {
	if err := t.check(idx); err != nil {
		return "", err
	}
	return t.entries[idx].Name, nil
}

// Index resolves a key name to its index.
func (t *Table) Index(name string) (int, error) {
	for i, e := range t.entries {
		if e.Name == name {
			return i, nil
		}
	}
	return -1, oops.Wrapf(types.ErrUnknownKey, "no key named %q", name)
}

// Verifier returns the verifier for the key at idx.
func (t *Table) Verifier(idx int) (types.Verifier, error) {
	if err := t.check(idx); err != nil {
		return nil, err
	}
	return t.verifiers[idx], nil
}

// Verify checks a wire format signature over a SHA-1 digest with the key at
// idx. It returns nil only for a valid signature.
func (t *Table) Verify(digest, sig []byte, idx int) error {
	if err := t.check(idx); err != nil {
		return err
	}
	return t.verifiers[idx].VerifyHash(digest, sig)
}

// VerifyData hashes data with SHA-1 and verifies it with the key at idx.
func (t *Table) VerifyData(data, sig []byte, idx int) error {
	h := sha1.Sum(data)
	return t.Verify(h[:], sig, idx)
}
