package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// File modes bootgate writes with.
const (
	PrivateKeyMode os.FileMode = 0o600
	PrivateDirMode os.FileMode = 0o700
	PublicFileMode os.FileMode = 0o644
	PublicDirMode  os.FileMode = 0o755
)

var (
	ErrPathEscapesBase   = errors.New("table path escapes the bootgate directory")
	ErrNotRegularFile    = errors.New("trust table is not a regular file")
	ErrWritableTrustFile = errors.New("trust table is writable by group or other")
	ErrWritableTrustDir  = errors.New("trust table directory is writable by other")
)

// PathOrigin records where a table path came from. It decides what a
// relative path is relative to.
type PathOrigin int

const (
	// FromConfig paths were read from the config file. Relative ones live
	// inside the bootgate directory and may not leave it.
	FromConfig PathOrigin = iota
	// FromCommandLine paths were typed by the operator and resolve against
	// the working directory.
	FromCommandLine
)

func (o PathOrigin) String() string {
	if o == FromCommandLine {
		return "command line"
	}
	return "config"
}

// ResolveTablePath returns the absolute location of a key or module table.
// An empty path stays empty and selects the embedded table.
func ResolveTablePath(p string, origin PathOrigin) (string, error) {
	if p == "" {
		return "", nil
	}
	if origin == FromCommandLine || filepath.IsAbs(p) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", oops.Wrapf(err, "resolving %s table path %q", origin, p)
		}
		return abs, nil
	}
	return withinDir(BuildDirPath(), p)
}

// withinDir joins rel onto base and refuses results outside base.
func withinDir(base, rel string) (string, error) {
	if base == "" {
		return "", oops.Errorf("bootgate directory is unknown")
	}
	root, err := filepath.Abs(base)
	if err != nil {
		return "", oops.Wrapf(err, "resolving bootgate directory %q", base)
	}
	joined := filepath.Join(root, rel)
	if joined != root && !strings.HasPrefix(joined, root+string(filepath.Separator)) {
		log.WithFields(logger.Fields{
			"at":       "config.withinDir",
			"reason":   "path_escapes_base",
			"base":     root,
			"resolved": joined,
		}).Debug("rejected table path")
		return "", oops.Wrapf(ErrPathEscapesBase, "%q resolves to %q outside %q", rel, joined, root)
	}
	return joined, nil
}

// CheckTrustFile reports why a key or module table at path should not be
// trusted. Anyone who can rewrite the table can make bootgate accept their
// images, so the file must be regular, writable only by its owner, and sit
// in a directory others cannot write to unless the sticky bit is set.
func CheckTrustFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return oops.Wrapf(err, "checking trust table %q", path)
	}
	if !info.Mode().IsRegular() {
		return oops.Wrapf(ErrNotRegularFile, "%q is %s", path, info.Mode().Type())
	}
	if perm := info.Mode().Perm(); perm&0o022 != 0 {
		return oops.Wrapf(ErrWritableTrustFile, "%q has mode %04o", path, perm)
	}
	dir, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return oops.Wrapf(err, "checking directory of %q", path)
	}
	if dir.Mode().Perm()&0o002 != 0 && dir.Mode()&fs.ModeSticky == 0 {
		return oops.Wrapf(ErrWritableTrustDir, "%q has mode %04o", filepath.Dir(path), dir.Mode().Perm())
	}
	return nil
}

// WritePrivateKey writes a signing key readable only by its owner, creating
// a private parent directory when needed.
func WritePrivateKey(path string, pem []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, PrivateDirMode); err != nil {
		return oops.Wrapf(err, "creating key directory %q", dir)
	}
	if err := os.WriteFile(path, pem, PrivateKeyMode); err != nil {
		return oops.Wrapf(err, "writing private key %q", path)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, PrivateKeyMode); err != nil {
		return oops.Wrapf(err, "restricting private key %q", path)
	}
	log.WithFields(logger.Fields{
		"at":   "config.WritePrivateKey",
		"path": path,
		"mode": "0600",
	}).Debug("wrote private key")
	return nil
}
