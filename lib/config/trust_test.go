package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTablePathFromConfig(t *testing.T) {
	base := BuildDirPath()
	abs := filepath.Join(t.TempDir(), "keys.yaml")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty selects embedded", "", ""},
		{"relative", "keys.pem", filepath.Join(base, "keys.pem")},
		{"nested", "tables/modules.sha1", filepath.Join(base, "tables", "modules.sha1")},
		{"dots inside base", "tables/../keys.pem", filepath.Join(base, "keys.pem")},
		{"absolute kept", abs, abs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTablePath(tt.in, FromConfig)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTablePathEscapes(t *testing.T) {
	for _, p := range []string{"../outside.pem", "tables/../../outside.pem", "../../../../etc/passwd"} {
		t.Run(p, func(t *testing.T) {
			_, err := ResolveTablePath(p, FromConfig)
			assert.ErrorIs(t, err, ErrPathEscapesBase)
		})
	}
}

func TestResolveTablePathFromCommandLine(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := ResolveTablePath("kernel.pem", FromCommandLine)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "kernel.pem"), got)

	// operators may point anywhere on the command line
	got, err = ResolveTablePath("../shared/keys.yaml", FromCommandLine)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(wd), "shared", "keys.yaml"), got)
}

func TestOverrideTables(t *testing.T) {
	t.Chdir(t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)

	cfg := DefaultGateConfig()
	cfg.ModuleTable = "/etc/bootgate/modules.sha1"
	require.NoError(t, cfg.OverrideTables("keys.pem", ""))
	assert.Equal(t, filepath.Join(wd, "keys.pem"), cfg.KeyTable)
	assert.Equal(t, "/etc/bootgate/modules.sha1", cfg.ModuleTable)
}

func TestCheckTrustFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o755))

	good := filepath.Join(dir, "keys.pem")
	require.NoError(t, os.WriteFile(good, []byte("x"), 0o644))
	require.NoError(t, os.Chmod(good, 0o644))
	assert.NoError(t, CheckTrustFile(good))

	for _, mode := range []os.FileMode{0o664, 0o646, 0o666} {
		require.NoError(t, os.Chmod(good, mode))
		assert.ErrorIs(t, CheckTrustFile(good), ErrWritableTrustFile, "mode %04o", mode)
	}
	require.NoError(t, os.Chmod(good, 0o644))

	assert.ErrorIs(t, CheckTrustFile(dir), ErrNotRegularFile)
	assert.Error(t, CheckTrustFile(filepath.Join(dir, "missing.pem")))

	require.NoError(t, os.Chmod(dir, 0o777))
	assert.ErrorIs(t, CheckTrustFile(good), ErrWritableTrustDir)
	require.NoError(t, os.Chmod(dir, 0o777|os.ModeSticky))
	assert.NoError(t, CheckTrustFile(good))
	require.NoError(t, os.Chmod(dir, 0o755))
}

func TestWritePrivateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "signing.key")
	require.NoError(t, WritePrivateKey(path, []byte("secret")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, PrivateKeyMode, info.Mode().Perm())
	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, PrivateDirMode, dirInfo.Mode().Perm())

	// an existing world-readable file is tightened
	require.NoError(t, os.Chmod(path, 0o644))
	require.NoError(t, WritePrivateKey(path, []byte("rotated")))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, PrivateKeyMode, info.Mode().Perm())
}
