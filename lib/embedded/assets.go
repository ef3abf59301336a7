package embedded

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// AssetsFS embeds the trust material at compile time.
//
//go:embed all:assets
var AssetsFS embed.FS

const (
	keysDir         = "assets/keys"
	moduleTablePath = "assets/modhash/modules.sha1"
)

// KeyFile is one embedded PEM key.
type KeyFile struct {
	Index int
	Name  string
	PEM   []byte
}

// GetKeys returns the embedded keys as a filesystem rooted at assets/keys.
func GetKeys() (fs.FS, error) {
	return fs.Sub(AssetsFS, keysDir)
}

// parseKeyFileName splits "<index>-<name>.pem".
func parseKeyFileName(file string) (int, string, bool) {
	if filepath.Ext(file) != ".pem" {
		return 0, "", false
	}
	base := strings.TrimSuffix(file, ".pem")
	prefix, name, ok := strings.Cut(base, "-")
	if !ok || name == "" {
		return 0, "", false
	}
	idx, err := strconv.Atoi(prefix)
	if err != nil || idx < 0 {
		return 0, "", false
	}
	return idx, name, true
}

// ListKeys returns the embedded keys ordered by index. Indexes must be
// contiguous from zero.
func ListKeys() ([]KeyFile, error) {
	keyFS, err := GetKeys()
	if err != nil {
		return nil, oops.Wrapf(err, "opening embedded keys")
	}
	entries, err := fs.ReadDir(keyFS, ".")
	if err != nil {
		return nil, oops.Wrapf(err, "listing embedded keys")
	}
	var keys []KeyFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".pem" {
			continue
		}
		idx, name, ok := parseKeyFileName(entry.Name())
		if !ok {
			log.WithField("file", entry.Name()).Warn("Ignoring embedded file with unexpected name")
			continue
		}
		data, err := fs.ReadFile(keyFS, entry.Name())
		if err != nil {
			return nil, oops.Wrapf(err, "reading embedded key %s", entry.Name())
		}
		keys = append(keys, KeyFile{Index: idx, Name: name, PEM: data})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Index < keys[j].Index })
	for i, k := range keys {
		if k.Index != i {
			return nil, oops.Errorf("embedded key indexes not contiguous: want %d, found %d (%s)", i, k.Index, k.Name)
		}
	}
	return keys, nil
}

// ModuleTable returns the embedded module hash table in hex form.
func ModuleTable() ([]byte, error) {
	return AssetsFS.ReadFile(moduleTablePath)
}

// Extract writes the embedded assets under destDir, mirroring the embedded
// layout without the leading "assets" directory.
func Extract(destDir string) error {
	return fs.WalkDir(AssetsFS, "assets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel("assets", path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(destDir, relPath)

		if d.IsDir() {
			return os.MkdirAll(destPath, 0o755)
		}

		data, err := AssetsFS.ReadFile(path)
		if err != nil {
			return err
		}
		log.WithField("path", destPath).Debug("Extracting embedded asset")
		return os.WriteFile(destPath, data, 0o644)
	})
}
