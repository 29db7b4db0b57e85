// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logstore is the hierarchical file store the history engine
// reads event logs from and deletes expired logs in. A Store is
// rooted at the configured log directory; every path it accepts or
// returns is slash-separated and relative to that root, with "" naming
// the root itself.
//
// Backends:
//
//   - [Local]: a directory on the local filesystem.
//   - [Memory]: an in-process tree with injectable per-path failures,
//     used by tests and by "mem://" demo deployments.
//   - [GCS]: a Google Cloud Storage bucket prefix.
//   - [S3]: an S3-compatible bucket prefix (MinIO, AWS).
//
// Object stores have no real directories. A "directory" there is any
// prefix followed by "/" that has at least one object under it; its
// modification time is zero, which is fine for the history engine
// because it derives a legacy directory's time from its children.
//
// Errors are classified with [ErrNotExist], [ErrPermission] and
// [ErrUnavailable] so callers can decide with errors.Is whether a
// failure is per-entry (permission) or transient (unavailable).
package logstore
