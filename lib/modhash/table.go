package modhash

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"slices"
	"strings"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// DigestSize is the size of a table entry.
const DigestSize = sha1.Size

// Digest is a SHA-1 value.
type Digest [DigestSize]byte

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	return sha1.Sum(data)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest decodes a 40 character hex digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return d, oops.Wrapf(err, "decoding digest %q", s)
	}
	if len(raw) != DigestSize {
		return d, oops.Errorf("digest %q is %d bytes, want %d", s, len(raw), DigestSize)
	}
	copy(d[:], raw)
	return d, nil
}

// Table is a strictly ascending list of known-good digests.
type Table struct {
	entries []Digest
}

// NewTable wraps digests that are already sorted. Unsorted or duplicate
// input is refused.
func NewTable(digests []Digest) (*Table, error) {
	for i := 1; i < len(digests); i++ {
		if bytes.Compare(digests[i-1][:], digests[i][:]) >= 0 {
			return nil, oops.Errorf("hash table not strictly ascending at entry %d", i)
		}
	}
	return &Table{entries: slices.Clone(digests)}, nil
}

// BuildTable sorts and deduplicates digests into a table.
func BuildTable(digests []Digest) *Table {
	entries := slices.Clone(digests)
	slices.SortFunc(entries, func(a, b Digest) int {
		return bytes.Compare(a[:], b[:])
	})
	entries = slices.Compact(entries)
	return &Table{entries: entries}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table entries.
func (t *Table) Entries() []Digest {
	if t == nil {
		return nil
	}
	return slices.Clone(t.entries)
}

// seed is the interpolated start index for d.
func (t *Table) seed(d Digest) int {
	return (len(t.entries) * int(d[0]>>4)) / 16
}

// Lookup walks the table for d as described in the package documentation.
// It returns the index of the match and true, or the index where the walk
// stopped and false.
func (t *Table) Lookup(d Digest) (int, bool) {
	n := t.Len()
	if n == 0 {
		return 0, false
	}
	i := t.seed(d)
	first := bytes.Compare(t.entries[i][:], d[:])
	if first == 0 {
		return i, true
	}
	step := 1
	if first > 0 {
		step = -1
	}
	for {
		i += step
		if i < 0 || i >= n {
			return i, false
		}
		c := bytes.Compare(t.entries[i][:], d[:])
		if c == 0 {
			return i, true
		}
		if (c > 0) != (first > 0) {
			// walked past where d would sit
			return i, false
		}
	}
}

// Contains reports whether d is admitted by the table.
func (t *Table) Contains(d Digest) bool {
	_, ok := t.Lookup(d)
	return ok
}

// ReadTable reads the binary format: concatenated 20 byte digests in
// ascending order.
func ReadTable(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, oops.Wrapf(err, "reading hash table")
	}
	if len(raw)%DigestSize != 0 {
		return nil, oops.Errorf("hash table is %d bytes, not a multiple of %d", len(raw), DigestSize)
	}
	digests := make([]Digest, len(raw)/DigestSize)
	for i := range digests {
		copy(digests[i][:], raw[i*DigestSize:])
	}
	return NewTable(digests)
}

// WriteTo writes the binary format.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, d := range t.entries {
		n, err := w.Write(d[:])
		total += int64(n)
		if err != nil {
			return total, oops.Wrapf(err, "writing hash table")
		}
	}
	return total, nil
}

// ReadHexTable reads one hex digest per line. Blank lines and lines starting
// with '#' are ignored. Entries must already be in ascending order.
func ReadHexTable(r io.Reader) (*Table, error) {
	var digests []Digest
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		d, err := ParseDigest(text)
		if err != nil {
			return nil, oops.Wrapf(err, "line %d", line)
		}
		digests = append(digests, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, oops.Wrapf(err, "reading hex hash table")
	}
	log.WithFields(logger.Fields{"entries": len(digests)}).Debug("Read hex hash table")
	return NewTable(digests)
}

// WriteHex writes one lowercase hex digest per line.
func (t *Table) WriteHex(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, d := range t.entries {
		if _, err := bw.WriteString(d.String() + "\n"); err != nil {
			return oops.Wrapf(err, "writing hex hash table")
		}
	}
	return bw.Flush()
}
