package gate

import (
	"bytes"
	"errors"
	"io/fs"

	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/embedded"
	"github.com/go-i2p/bootgate/lib/keys"
	"github.com/go-i2p/bootgate/lib/modhash"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// LoadKeyTable returns the table named by path, or the embedded keys when
// path is empty.
func LoadKeyTable(path string, profile dsa.Profile) (*keys.Table, error) {
	if path == "" {
		return embeddedKeyTable(profile)
	}
	warnIfWritable(path, "key table")
	return keys.Open(path, profile)
}

func embeddedKeyTable(profile dsa.Profile) (*keys.Table, error) {
	files, err := embedded.ListKeys()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.WithFields(logger.Fields{
			"at":     "gate.embeddedKeyTable",
			"reason": "no_embedded_keys",
		}).Info("no trusted keys built in, every signature will be rejected until keys.table is set")
		return keys.Empty(profile), nil
	}
	sources := make([]keys.PEMSource, len(files))
	for i, f := range files {
		sources[i] = keys.PEMSource{Name: f.Name, Data: f.PEM}
	}
	return keys.FromPEM(profile, sources...)
}

// LoadModuleTable returns the table named by path, or the embedded table
// when path is empty.
func LoadModuleTable(path string) (*modhash.Table, error) {
	if path == "" {
		data, err := embedded.ModuleTable()
		if err != nil {
			return nil, oops.Wrapf(err, "reading embedded module table")
		}
		return modhash.ReadHexTable(bytes.NewReader(data))
	}
	warnIfWritable(path, "module table")
	return modhash.Open(path)
}

// warnIfWritable flags trust files that someone other than the owner could
// rewrite. A missing file is left for the loader to report.
func warnIfWritable(path, what string) {
	err := config.CheckTrustFile(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	log.WithError(err).WithFields(logger.Fields{
		"at":     "gate.warnIfWritable",
		"reason": "untrusted_table_file",
		"path":   path,
		"table":  what,
	}).Warn("trust table could be modified by other users")
}
