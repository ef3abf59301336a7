package modhash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// Format names a hash table encoding.
type Format string

const (
	FormatBinary Format = "bin"
	FormatHex    Format = "hex"
)

// FormatFor guesses the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin", ".dat":
		return FormatBinary, nil
	case ".sha1", ".hex", ".txt":
		return FormatHex, nil
	}
	return "", oops.Errorf("cannot tell hash table format of %q", path)
}

// Read parses a table in the given format.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatBinary:
		return ReadTable(r)
	case FormatHex:
		return ReadHexTable(r)
	}
	return nil, oops.Errorf("unknown hash table format %q", format)
}

// Write encodes the table in the given format.
func (t *Table) Write(w io.Writer, format Format) error {
	switch format {
	case FormatBinary:
		_, err := t.WriteTo(w)
		return err
	case FormatHex:
		return t.WriteHex(w)
	}
	return oops.Errorf("unknown hash table format %q", format)
}

// Open loads a hash table file, picking the format from its extension.
func Open(path string) (*Table, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Wrapf(err, "reading hash table %s", path)
	}
	log.WithFields(logger.Fields{
		"at":     "modhash.Open",
		"path":   path,
		"format": format,
	}).Debug("Loading hash table")
	return Read(bytes.NewReader(data), format)
}
