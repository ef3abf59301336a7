package bundle

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/bootgate/lib/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLimit = 1 << 20

func fileBytes(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "cannot read test data file %s", name)
	return b
}

func testTable(t *testing.T) *keys.Table {
	t.Helper()
	table, err := keys.FromPEM(dsa.Classic,
		keys.PEMSource{Name: "rootfs", Data: fileBytes(t, "rootfs.pub.pem")},
		keys.PEMSource{Name: "kernel", Data: fileBytes(t, "kernel.pub.pem")},
	)
	require.NoError(t, err)
	return table
}

func testSigner(t *testing.T, name string) types.Signer {
	t.Helper()
	priv, err := dsa.ParsePrivateKeyPEM(fileBytes(t, name+".key"))
	require.NoError(t, err)
	signer, err := priv.NewSigner()
	require.NoError(t, err)
	return signer
}

func writeBundle(t *testing.T, hdr Header, content []byte, signerName string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, hdr, content, testSigner(t, signerName)))
	return buf.Bytes()
}

func TestWriteReadVerify(t *testing.T) {
	table := testTable(t)
	content := []byte("kernel image v1")
	raw := writeBundle(t, Header{ContentType: Kernel, KeyIndex: keys.KernelKey, Version: "1.0.3"}, content, "kernel")

	assert.Equal(t, []byte("BGIMG\x00"), raw[:6])
	assert.Len(t, raw, fixedHeader+len("1.0.3")+len(content)+dsa.ClassicSignatureSize)

	b, err := Read(bytes.NewReader(raw), testLimit)
	require.NoError(t, err)
	assert.Equal(t, Kernel, b.ContentType)
	assert.Equal(t, keys.KernelKey, b.KeyIndex)
	assert.Equal(t, "1.0.3", b.Version)
	assert.Equal(t, uint64(len(content)), b.ContentLength)
	assert.Equal(t, uint16(dsa.ClassicSignatureSize), b.SignatureLength)

	got, err := b.Verify(table)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = b.Verify(table)
	assert.Error(t, err, "a bundle can only be consumed once")
}

func TestEmptyContent(t *testing.T) {
	raw := writeBundle(t, Header{ContentType: Blob, KeyIndex: keys.RootFSKey, Version: "0"}, nil, "rootfs")
	b, err := Read(bytes.NewReader(raw), testLimit)
	require.NoError(t, err)
	got, err := b.Verify(testTable(t))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVerifyWrongKeyIndex(t *testing.T) {
	// Signed with the rootfs key but labelled as kernel.
	raw := writeBundle(t, Header{ContentType: RootFS, KeyIndex: keys.KernelKey, Version: "2"}, []byte("rootfs"), "rootfs")
	b, err := Read(bytes.NewReader(raw), testLimit)
	require.NoError(t, err)
	_, err = b.Verify(testTable(t))
	assert.ErrorIs(t, err, types.ErrInvalidSignature)
}

func TestVerifyUnknownKey(t *testing.T) {
	raw := writeBundle(t, Header{ContentType: Module, KeyIndex: 7, Version: "x"}, []byte("m"), "rootfs")
	b, err := Read(bytes.NewReader(raw), testLimit)
	require.NoError(t, err)
	_, err = b.Verify(testTable(t))
	assert.ErrorIs(t, err, types.ErrUnknownKey)
}

func TestVerifyTampering(t *testing.T) {
	content := []byte("rootfs image contents")
	raw := writeBundle(t, Header{ContentType: RootFS, KeyIndex: keys.RootFSKey, Version: "2024.1"}, content, "rootfs")
	contentStart := fixedHeader + len("2024.1")

	tests := []struct {
		name   string
		offset int
		want   error
	}{
		{"content byte", contentStart + 3, types.ErrInvalidSignature},
		{"version byte", fixedHeader, types.ErrInvalidSignature},
		{"content type", 7, types.ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := bytes.Clone(raw)
			mod[tt.offset] ^= 0x01
			b, err := Read(bytes.NewReader(mod), testLimit)
			require.NoError(t, err)
			_, err = b.Verify(testTable(t))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("signature length byte", func(t *testing.T) {
		mod := bytes.Clone(raw)
		mod[len(raw)-dsa.ClassicSignatureSize] = 0x7f
		b, err := Read(bytes.NewReader(mod), testLimit)
		require.NoError(t, err)
		_, err = b.Verify(testTable(t))
		assert.ErrorIs(t, err, types.ErrMalformedSignature)
	})
}

func TestVerifyTruncatedAndTrailing(t *testing.T) {
	content := []byte("module payload")
	raw := writeBundle(t, Header{ContentType: Module, KeyIndex: keys.RootFSKey, Version: "3"}, content, "rootfs")
	contentStart := fixedHeader + 1

	t.Run("content", func(t *testing.T) {
		b, err := Read(bytes.NewReader(raw[:contentStart+4]), testLimit)
		require.NoError(t, err)
		_, err = b.Verify(testTable(t))
		assert.ErrorIs(t, err, ErrMissingContent)
	})

	t.Run("signature", func(t *testing.T) {
		b, err := Read(bytes.NewReader(raw[:len(raw)-1]), testLimit)
		require.NoError(t, err)
		_, err = b.Verify(testTable(t))
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("trailing", func(t *testing.T) {
		b, err := Read(bytes.NewReader(append(bytes.Clone(raw), 0)), testLimit)
		require.NoError(t, err)
		_, err = b.Verify(testTable(t))
		assert.ErrorIs(t, err, ErrTrailingData)
	})
}

func TestVerifySignatureSizeMismatch(t *testing.T) {
	raw := writeBundle(t, Header{ContentType: Blob, KeyIndex: 0, Version: "1"}, []byte("b"), "rootfs")
	binary.BigEndian.PutUint16(raw[9:], 40)
	b, err := Read(bytes.NewReader(raw), testLimit)
	require.NoError(t, err)
	_, err = b.Verify(testTable(t))
	assert.ErrorIs(t, err, types.ErrBadSignatureSize)
}

// headerOnly builds a bundle header claiming contentLen bytes, with nothing
// after it.
func headerOnly(t *testing.T, contentLen uint64) []byte {
	t.Helper()
	raw, err := (&Header{ContentType: Blob, KeyIndex: 0, SignatureLength: dsa.ClassicSignatureSize, Version: "1"}).marshal()
	require.NoError(t, err)
	binary.BigEndian.PutUint64(raw[12:20], contentLen)
	return raw
}

func TestReadRejectsContentLengthBeyondInt64(t *testing.T) {
	for _, n := range []uint64{1 << 63, math.MaxUint64} {
		_, err := Read(bytes.NewReader(headerOnly(t, n)), math.MaxUint64)
		assert.ErrorIs(t, err, ErrContentTooLarge, "content length %d", n)
	}

	signer := testSigner(t, "rootfs")
	_, err := (&Header{ContentType: Blob, Version: "1", ContentLength: 1 << 63}).marshal()
	assert.ErrorIs(t, err, ErrContentTooLarge)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Header{ContentType: Blob, Version: "1"}, []byte("ok"), signer))
}

func TestVerifyHugeClaimedContent(t *testing.T) {
	b, err := Read(bytes.NewReader(headerOnly(t, math.MaxInt64)), math.MaxUint64)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		_, err = b.Verify(testTable(t))
	})
	assert.ErrorIs(t, err, ErrMissingContent)
}

// zeroReader returns (0, nil) a few times before handing over its data.
type zeroReader struct {
	stalls int
	r      io.Reader
}

func (z *zeroReader) Read(p []byte) (int, error) {
	if z.stalls > 0 {
		z.stalls--
		return 0, nil
	}
	return z.r.Read(p)
}

func TestTrailingDataBehindEmptyReads(t *testing.T) {
	raw := writeBundle(t, Header{ContentType: Module, KeyIndex: keys.RootFSKey, Version: "3"}, []byte("m"), "rootfs")
	b, err := Read(bytes.NewReader(raw), testLimit)
	require.NoError(t, err)
	// header consumed; stall before the rest so the trailing byte arrives late
	b.reader = io.MultiReader(b.reader, &zeroReader{stalls: 3, r: bytes.NewReader([]byte{0})})
	_, err = b.Verify(testTable(t))
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestVerifyToStreams(t *testing.T) {
	content := bytes.Repeat([]byte{0xab}, 64<<10)
	raw := writeBundle(t, Header{ContentType: RootFS, KeyIndex: 0, Version: "big"}, content, "rootfs")
	b, err := Read(bytes.NewReader(raw), testLimit)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, b.VerifyTo(testTable(t), &out))
	assert.Equal(t, content, out.Bytes())
}

func TestReadHeaderErrors(t *testing.T) {
	good := writeBundle(t, Header{ContentType: Kernel, KeyIndex: 1, Version: "v1"}, []byte("kernel"), "kernel")

	set := func(off int, v byte) []byte {
		b := bytes.Clone(good)
		b[off] = v
		return b
	}

	tests := []struct {
		name  string
		input []byte
		limit uint64
		want  error
	}{
		{"empty", nil, testLimit, ErrMissingMagicBytes},
		{"short magic", good[:3], testLimit, ErrMissingMagicBytes},
		{"wrong magic", set(0, 'X'), testLimit, ErrMissingMagicBytes},
		{"missing format version", good[:6], testLimit, ErrMissingFileFormatVersion},
		{"wrong format version", set(6, 0x02), testLimit, ErrMissingFileFormatVersion},
		{"missing content type", good[:7], testLimit, ErrMissingContentType},
		{"bad content type", set(7, 0x09), testLimit, ErrMissingContentType},
		{"missing key index", good[:8], testLimit, ErrMissingKeyIndex},
		{"missing signature length", good[:10], testLimit, ErrMissingSignatureLength},
		{"missing version length", good[:11], testLimit, ErrMissingVersionLength},
		{"zero version length", set(11, 0), testLimit, ErrVersionTooShort},
		{"missing content length", good[:15], testLimit, ErrMissingContentLength},
		{"content over limit", good, 5, ErrContentTooLarge},
		{"missing version", good[:21], testLimit, ErrMissingVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.input), tt.limit)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadPropagatesReaderErrors(t *testing.T) {
	_, err := Read(io.MultiReader(bytes.NewReader([]byte("BG")), errReader{}), testLimit)
	assert.ErrorIs(t, err, errBoom)
}

func TestWriteRejectsBadHeader(t *testing.T) {
	signer := testSigner(t, "rootfs")
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, Header{ContentType: Kernel, Version: ""}, nil, signer), ErrVersionTooShort)
	assert.ErrorIs(t, Write(&buf, Header{ContentType: Kernel, KeyIndex: 256, Version: "1"}, nil, signer), ErrMissingKeyIndex)
	assert.ErrorIs(t, Write(&buf, Header{ContentType: ContentType(9), Version: "1"}, nil, signer), ErrMissingContentType)
	assert.Zero(t, buf.Len())
}

func TestContentTypeNames(t *testing.T) {
	for _, c := range []ContentType{Kernel, RootFS, Module, Blob} {
		parsed, err := ParseContentType(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "unknown", ContentType(0x42).String())
	_, err := ParseContentType("firmware")
	assert.ErrorIs(t, err, ErrMissingContentType)
}

var errBoom = io.ErrClosedPipe

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errBoom }
