package util

import (
	"io"
	"os"

	"github.com/samber/oops"
)

// CheckFileExists reports whether fpath can be stat'ed.
func CheckFileExists(fpath string) bool {
	_, e := os.Stat(fpath)
	return e == nil
}

// ReadFileLimited reads at most limit bytes from fpath. A file larger than
// limit is an error; the excess is never buffered.
func ReadFileLimited(fpath string, limit int64) ([]byte, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, oops.Wrapf(err, "opening %s", fpath)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, oops.Wrapf(err, "reading %s", fpath)
	}
	if int64(len(data)) > limit {
		return nil, oops.Errorf("%s is larger than %d bytes", fpath, limit)
	}
	return data, nil
}
