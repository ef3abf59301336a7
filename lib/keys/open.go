package keys

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// Format names a key table encoding.
type Format string

const (
	FormatPEM   Format = "pem"
	FormatWords Format = "words"
	FormatYAML  Format = "yaml"
)

// FormatFor guesses the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pem", ".pub", ".crt":
		return FormatPEM, nil
	case ".words", ".txt":
		return FormatWords, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", oops.Errorf("cannot tell key table format of %q", path)
}

// Read parses a table in the given format.
func Read(r io.Reader, format Format, profile dsa.Profile) (*Table, error) {
	switch format {
	case FormatPEM:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, oops.Wrapf(err, "reading PEM key table")
		}
		return FromPEM(profile, PEMSource{Data: data})
	case FormatWords:
		return ReadWords(r, profile)
	case FormatYAML:
		return ReadYAML(r, profile)
	}
	return nil, oops.Errorf("unknown key table format %q", format)
}

// Write encodes the table in the given format.
func (t *Table) Write(w io.Writer, format Format) error {
	switch format {
	case FormatPEM:
		data, err := t.MarshalPEM()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatWords:
		return t.WriteWords(w)
	case FormatYAML:
		return t.WriteYAML(w)
	}
	return oops.Errorf("unknown key table format %q", format)
}

// Open loads a key table file, picking the format from its extension.
func Open(path string, profile dsa.Profile) (*Table, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Wrapf(err, "reading key table %s", path)
	}
	log.WithFields(logger.Fields{
		"at":     "keys.Open",
		"path":   path,
		"format": format,
	}).Debug("Loading key table")
	return Read(bytes.NewReader(data), format, profile)
}
