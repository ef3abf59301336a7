package embedded

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListKeysShipsEmpty(t *testing.T) {
	keys, err := ListKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	// the placeholder is the only file and is not a key
	keyFS, err := GetKeys()
	require.NoError(t, err)
	entries, err := fs.ReadDir(keyFS, ".")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".pem", filepath.Ext(e.Name()), e.Name())
	}
}

func TestParseKeyFileName(t *testing.T) {
	tests := []struct {
		file string
		idx  int
		name string
		ok   bool
	}{
		{"0-rootfs.pem", 0, "rootfs", true},
		{"12-recovery-kernel.pem", 12, "recovery-kernel", true},
		{"rootfs.pem", 0, "", false},
		{"0-.pem", 0, "", false},
		{"x-rootfs.pem", 0, "", false},
		{"-1-rootfs.pem", 0, "", false},
		{"0-rootfs.txt", 0, "", false},
	}
	for _, tt := range tests {
		idx, name, ok := parseKeyFileName(tt.file)
		assert.Equal(t, tt.ok, ok, tt.file)
		if tt.ok {
			assert.Equal(t, tt.idx, idx, tt.file)
			assert.Equal(t, tt.name, name, tt.file)
		}
	}
}

func TestModuleTable(t *testing.T) {
	data, err := ModuleTable()
	require.NoError(t, err)
	assert.Contains(t, string(data), "#")
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Extract(dir))

	for _, rel := range []string{"keys/README", "modhash/modules.sha1"} {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err, rel)
		want, err := AssetsFS.ReadFile("assets/" + rel)
		require.NoError(t, err)
		assert.Equal(t, want, data)
	}
}
