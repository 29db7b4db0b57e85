// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotExist means the path does not exist.
	ErrNotExist = errors.New("logstore: not found")

	// ErrPermission means the caller may not access the path. The
	// history engine treats it as permanent for that path.
	ErrPermission = errors.New("logstore: permission denied")

	// ErrUnavailable means the store could not serve the request,
	// typically transiently (network, throttling, I/O error).
	ErrUnavailable = errors.New("logstore: unavailable")
)

// FileInfo describes one entry returned by List or Stat.
type FileInfo struct {
	// Path is the entry's location relative to the store root.
	Path string

	// Name is the final element of Path.
	Name string

	// ModTime is the last modification time. Zero for object-store
	// directories, which have no timestamp of their own.
	ModTime time.Time

	IsDir bool
	Size  int64
}

// Store is the storage capability the history engine depends on.
// Implementations must be safe for concurrent use.
type Store interface {
	// List returns the direct children of the directory dir.
	List(ctx context.Context, dir string) ([]FileInfo, error)

	// Stat describes a single path.
	Stat(ctx context.Context, name string) (FileInfo, error)

	// Open opens a file for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists reports whether name exists. Errors other than "not
	// found" are returned.
	Exists(ctx context.Context, name string) (bool, error)

	// RemoveAll deletes name and, if it is a directory, everything
	// under it. Removing a path that does not exist succeeds.
	RemoveAll(ctx context.Context, name string) error

	// String describes the store for logs, e.g. "gs://bucket/prefix".
	String() string
}

// Join joins store path elements, ignoring empty ones.
func Join(elements ...string) string {
	return strings.TrimPrefix(path.Join(elements...), "/")
}

// cleanPath normalizes a store path. ".." elements are rejected
// rather than resolved so that no path can name something outside the
// root.
func cleanPath(name string) (string, error) {
	for _, element := range strings.Split(name, "/") {
		if element == ".." {
			return "", fmt.Errorf("%w: path %q escapes the store root", ErrPermission, name)
		}
	}
	return strings.TrimPrefix(path.Clean("/"+name), "/"), nil
}

// baseName returns the final element of a store path.
func baseName(name string) string {
	if name == "" {
		return ""
	}
	return path.Base(name)
}
