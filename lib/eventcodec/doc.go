// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventcodec decompresses event log streams. Codecs are named
// the way event logs name them: by a file extension on modern logs
// ("app-1.zstd") and by a COMPRESSION_CODEC_<name> marker file inside
// legacy log directories.
//
// Supported: lz4 (frame format, pierrec/lz4), zstd and snappy (framed
// stream format, klauspost/compress). "lzf" is a known name with no Go
// decoder and yields [ErrUnsupportedCodec]; any other name yields
// [ErrUnknownCodec].
package eventcodec
