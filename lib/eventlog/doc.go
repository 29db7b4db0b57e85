// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventlog resolves a log directory listing entry into an
// [Entry]: the facts the history scanner needs about one event log,
// independent of the log's on-disk shape.
//
// Two shapes exist. A modern log is a single file whose name carries
// an optional codec extension and an ".inprogress" suffix while the
// application runs. A legacy log is a directory holding the event
// file (EVENT_LOG_<n>) next to zero-byte marker files:
//
//	SPARK_VERSION_<version>     version of the writer
//	COMPRESSION_CODEC_<codec>   codec of the event file, if compressed
//	APPLICATION_COMPLETE        present once the application ended
//
// Resolve inspects the entry once (listing a legacy directory's
// children) and records everything as plain fields, so the scanner
// never branches on the shape again.
package eventlog
