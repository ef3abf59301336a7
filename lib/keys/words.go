package keys

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/samber/oops"
)

// WordSize is the width of one table word in bytes.
const WordSize = 4

var paramNames = []string{"p", "q", "g", "y"}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func params(k *dsa.DSAPublicKey) []*big.Int {
	return []*big.Int{k.P, k.Q, k.G, k.Y}
}

// paramWidth is the dump width in bytes of a parameter: N bits for q, L bits
// for the others, rounded up to whole words.
func paramWidth(name string, pr dsa.Profile) int {
	bits := pr.L
	if name == "q" {
		bits = pr.N
	}
	bytes := (bits + 7) / 8
	return (bytes + WordSize - 1) / WordSize * WordSize
}

// toWords dumps v big-endian into width bytes and returns the 32-bit words
// least significant first.
func toWords(v *big.Int, width int) ([]uint32, error) {
	if (v.BitLen()+7)/8 > width {
		return nil, oops.Errorf("value of %d bits does not fit %d bytes", v.BitLen(), width)
	}
	buf := v.FillBytes(make([]byte, width))
	words := make([]uint32, width/WordSize)
	for i := range words {
		off := width - (i+1)*WordSize
		words[i] = binary.BigEndian.Uint32(buf[off : off+WordSize])
	}
	return words, nil
}

func fromWords(words []uint32) *big.Int {
	buf := make([]byte, len(words)*WordSize)
	for i, w := range words {
		off := len(buf) - (i+1)*WordSize
		binary.BigEndian.PutUint32(buf[off:], w)
	}
	return new(big.Int).SetBytes(buf)
}

// WriteWords writes the table in the word dump format.
func (t *Table) WriteWords(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# bootgate key table L=%d N=%d, %d-bit words, least significant first\n",
		t.profile.L, t.profile.N, WordSize*8)
	for i, e := range t.entries {
		for j, v := range params(e.Key) {
			words, err := toWords(v, paramWidth(paramNames[j], t.profile))
			if err != nil {
				return oops.Wrapf(err, "key %d parameter %s", i, paramNames[j])
			}
			fmt.Fprintf(bw, "%d %s %s", i, paramNames[j], e.Name)
			for _, word := range words {
				fmt.Fprintf(bw, " 0x%08x", word)
			}
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// ReadWords parses the word dump format. Lines may come in any order, but
// every key index from 0 up must define all four parameters exactly once.
func ReadWords(r io.Reader, profile dsa.Profile) (*Table, error) {
	type partial struct {
		name   string
		values [4]*big.Int
	}
	var recs []*partial
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 4 {
			return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "line %d: want index, parameter, name and words", line)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil || idx < 0 || idx > 255 {
			return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "line %d: bad key index %q", line, fields[0])
		}
		param := -1
		for j, n := range paramNames {
			if fields[1] == n {
				param = j
			}
		}
		if param < 0 {
			return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "line %d: unknown parameter %q", line, fields[1])
		}
		words := make([]uint32, 0, len(fields)-3)
		for _, f := range fields[3:] {
			word, err := strconv.ParseUint(strings.TrimPrefix(f, "0x"), 16, 32)
			if err != nil {
				return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "line %d: bad word %q", line, f)
			}
			words = append(words, uint32(word))
		}
		for len(recs) <= idx {
			recs = append(recs, nil)
		}
		if recs[idx] == nil {
			recs[idx] = &partial{name: fields[2]}
		}
		rec := recs[idx]
		if rec.name != fields[2] {
			return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "line %d: key %d named both %q and %q", line, idx, rec.name, fields[2])
		}
		if rec.values[param] != nil {
			return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "line %d: key %d defines %s twice", line, idx, fields[1])
		}
		if profile.L != 0 || profile.N != 0 {
			if want := paramWidth(fields[1], profile) / WordSize; len(words) != want {
				return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "line %d: %s has %d words, profile wants %d", line, fields[1], len(words), want)
			}
		}
		rec.values[param] = fromWords(words)
	}
	if err := scanner.Err(); err != nil {
		return nil, oops.Wrapf(err, "reading key words")
	}

	entries := make([]Entry, 0, len(recs))
	for i, rec := range recs {
		if rec == nil {
			return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "key %d missing", i)
		}
		for j, v := range rec.values {
			if v == nil {
				return nil, oops.Wrapf(types.ErrInvalidKeyFormat, "key %d missing parameter %s", i, paramNames[j])
			}
		}
		entries = append(entries, Entry{
			Name: rec.name,
			Key: &dsa.DSAPublicKey{
				P: rec.values[0],
				Q: rec.values[1],
				G: rec.values[2],
				Y: rec.values[3],
			},
		})
	}
	return NewTable(profile, entries...)
}
