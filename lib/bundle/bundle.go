// Package bundle reads and writes signed image bundles.
//
// A bundle carries one kernel, rootfs, module or opaque blob together with
// the DSA signature that vouches for it and the index of the key that made
// the signature:
//
//	0   magic "BGIMG\x00"     6 bytes
//	6   format version 0x01   1
//	7   content type          1
//	8   key index             1
//	9   signature length      2   big-endian
//	11  version length        1   at least 1
//	12  content length        8   big-endian
//	20  version               version length bytes
//	..  content               content length bytes
//	..  signature             signature length bytes, wire format
//
// The signed digest is SHA-1 over everything before the signature.
//
// Example usage:
//
//	b, err := bundle.Read(f, 64<<20)
//	if err != nil {
//		// Not a bundle, or a header field is missing.
//	}
//	content, err := b.Verify(keyTable)
//	if err != nil {
//		// Do not use content.
//	}
package bundle

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

type ContentType byte

const (
	Kernel ContentType = 0x00
	RootFS ContentType = 0x01
	Module ContentType = 0x02
	Blob   ContentType = 0x03
)

var contentTypeNames = map[ContentType]string{
	Kernel: "kernel",
	RootFS: "rootfs",
	Module: "module",
	Blob:   "blob",
}

func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseContentType maps a name from String back to its ContentType.
func ParseContentType(name string) (ContentType, error) {
	for c, n := range contentTypeNames {
		if n == name {
			return c, nil
		}
	}
	return 0, ErrMissingContentType
}

var (
	ErrMissingMagicBytes        = errors.New("missing magic bytes")
	ErrMissingFileFormatVersion = errors.New("missing or incorrect file format version")
	ErrMissingContentType       = errors.New("missing or invalid content type")
	ErrMissingKeyIndex          = errors.New("missing key index")
	ErrMissingSignatureLength   = errors.New("missing signature length")
	ErrMissingVersionLength     = errors.New("missing version length")
	ErrVersionTooShort          = errors.New("version length too short")
	ErrMissingContentLength     = errors.New("missing content length")
	ErrContentTooLarge          = errors.New("content length exceeds limit")
	ErrMissingVersion           = errors.New("missing version")
	ErrMissingContent           = errors.New("missing content")
	ErrMissingSignature         = errors.New("missing signature")
	ErrTrailingData             = errors.New("trailing data after signature")
)

const (
	magicBytes    = "BGIMG\x00"
	formatVersion = 0x01
	fixedHeader   = 20
)

// Header is the parsed fixed part of a bundle plus its version string.
type Header struct {
	ContentType     ContentType
	KeyIndex        int
	SignatureLength uint16
	ContentLength   uint64
	Version         string
}

// marshal encodes the header exactly as it is hashed and written.
func (h *Header) marshal() ([]byte, error) {
	if len(h.Version) < 1 || len(h.Version) > 0xff {
		return nil, ErrVersionTooShort
	}
	if h.KeyIndex < 0 || h.KeyIndex > 0xff {
		return nil, ErrMissingKeyIndex
	}
	if _, ok := contentTypeNames[h.ContentType]; !ok {
		return nil, ErrMissingContentType
	}
	if h.ContentLength > math.MaxInt64 {
		return nil, ErrContentTooLarge
	}
	buf := make([]byte, fixedHeader, fixedHeader+len(h.Version))
	copy(buf, magicBytes)
	buf[6] = formatVersion
	buf[7] = byte(h.ContentType)
	buf[8] = byte(h.KeyIndex)
	binary.BigEndian.PutUint16(buf[9:], h.SignatureLength)
	buf[11] = byte(len(h.Version))
	binary.BigEndian.PutUint64(buf[12:], h.ContentLength)
	return append(buf, h.Version...), nil
}

// Bundle is a bundle whose header has been read. The content and signature
// are still in the underlying reader.
type Bundle struct {
	Header
	raw    []byte
	reader io.Reader
	used   bool
}

// readField reads exactly len(buf) bytes, mapping a short read to missing.
func readField(r io.Reader, buf []byte, missing error) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return missing
		}
		return err
	}
	return nil
}

// Read parses a bundle header. Content longer than maxContent is refused
// before any of it is read.
func Read(reader io.Reader, maxContent uint64) (*Bundle, error) {
	fixed := make([]byte, fixedHeader)

	if err := readField(reader, fixed[:6], ErrMissingMagicBytes); err != nil {
		return nil, err
	}
	if string(fixed[:6]) != magicBytes {
		return nil, ErrMissingMagicBytes
	}

	if err := readField(reader, fixed[6:7], ErrMissingFileFormatVersion); err != nil {
		return nil, err
	}
	if fixed[6] != formatVersion {
		return nil, ErrMissingFileFormatVersion
	}

	if err := readField(reader, fixed[7:8], ErrMissingContentType); err != nil {
		return nil, err
	}
	contentType := ContentType(fixed[7])
	if _, ok := contentTypeNames[contentType]; !ok {
		return nil, ErrMissingContentType
	}

	if err := readField(reader, fixed[8:9], ErrMissingKeyIndex); err != nil {
		return nil, err
	}

	if err := readField(reader, fixed[9:11], ErrMissingSignatureLength); err != nil {
		return nil, err
	}
	sigLen := binary.BigEndian.Uint16(fixed[9:11])
	if sigLen == 0 {
		return nil, ErrMissingSignatureLength
	}

	if err := readField(reader, fixed[11:12], ErrMissingVersionLength); err != nil {
		return nil, err
	}
	verLen := int(fixed[11])
	if verLen < 1 {
		return nil, ErrVersionTooShort
	}

	if err := readField(reader, fixed[12:20], ErrMissingContentLength); err != nil {
		return nil, err
	}
	contentLen := binary.BigEndian.Uint64(fixed[12:20])
	if contentLen > maxContent || contentLen > math.MaxInt64 {
		log.WithFields(logger.Fields{
			"content_length": contentLen,
			"limit":          maxContent,
		}).Debug("Bundle content exceeds limit")
		return nil, ErrContentTooLarge
	}

	version := make([]byte, verLen)
	if err := readField(reader, version, ErrMissingVersion); err != nil {
		return nil, err
	}

	b := &Bundle{
		Header: Header{
			ContentType:     contentType,
			KeyIndex:        int(fixed[8]),
			SignatureLength: sigLen,
			ContentLength:   contentLen,
			Version:         string(version),
		},
		raw:    append(fixed, version...),
		reader: reader,
	}
	log.WithFields(logger.Fields{
		"content_type":   b.ContentType,
		"key_index":      b.KeyIndex,
		"content_length": b.ContentLength,
		"version":        b.Version,
	}).Debug("Read bundle header")
	return b, nil
}
