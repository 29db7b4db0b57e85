// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package replay reads an event log stream and summarizes the
// application run it records: id, name, attempt, user, start and end.
//
// An event log is newline-delimited JSON, one listener event per line,
// each carrying an "Event" discriminator. Only the events that shape
// the summary are decoded; every other line is skipped after a cheap
// discriminator check.
//
// Modern log files may be compressed as a whole; the codec comes from
// the source name's extension (see eventcodec.FromName). Callers that
// already decompressed the stream pass a source name without one.
package replay
