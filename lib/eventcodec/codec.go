// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventcodec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	// ErrUnknownCodec means the codec name is not one event logs use.
	ErrUnknownCodec = errors.New("unknown compression codec")

	// ErrUnsupportedCodec means the codec is valid for event logs but
	// cannot be decoded here.
	ErrUnsupportedCodec = errors.New("unsupported compression codec")
)

// Codec names as they appear in file extensions and marker files.
const (
	LZ4    = "lz4"
	LZF    = "lzf"
	Snappy = "snappy"
	Zstd   = "zstd"
)

// Known reports whether name is a codec event logs may reference.
func Known(name string) bool {
	switch name {
	case LZ4, LZF, Snappy, Zstd:
		return true
	}
	return false
}

// NewReader wraps source in a decompressing reader for the named
// codec. Closing the result releases decoder resources; it does not
// close source.
func NewReader(name string, source io.Reader) (io.ReadCloser, error) {
	switch name {
	case LZ4:
		return io.NopCloser(lz4.NewReader(source)), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(source)), nil
	case Zstd:
		decoder, err := zstd.NewReader(source)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		return zstdReadCloser{decoder}, nil
	case LZF:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// FromName returns the codec named by the extension of a modern event
// log file name, ignoring a trailing in-progress suffix. The result is
// "" for uncompressed logs.
func FromName(fileName, inProgressSuffix string) string {
	fileName = strings.TrimSuffix(fileName, inProgressSuffix)
	index := strings.LastIndex(fileName, ".")
	if index < 0 {
		return ""
	}
	if extension := fileName[index+1:]; Known(extension) {
		return extension
	}
	return ""
}

// zstdReadCloser adapts zstd.Decoder, whose Close has no return value.
type zstdReadCloser struct {
	decoder *zstd.Decoder
}

func (r zstdReadCloser) Read(p []byte) (int, error) { return r.decoder.Read(p) }

func (r zstdReadCloser) Close() error {
	r.decoder.Close()
	return nil
}
