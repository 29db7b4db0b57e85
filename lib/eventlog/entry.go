// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bureau-foundation/runhistory/lib/eventcodec"
	"github.com/bureau-foundation/runhistory/lib/logstore"
)

// File name conventions shared by both log shapes.
const (
	InProgressSuffix        = ".inprogress"
	LogPrefix               = "EVENT_LOG_"
	VersionPrefix           = "SPARK_VERSION_"
	CompressionPrefix       = "COMPRESSION_CODEC_"
	ApplicationCompleteFile = "APPLICATION_COMPLETE"
)

// ErrNoPrimaryLog means a legacy directory has no EVENT_LOG_ file.
var ErrNoPrimaryLog = errors.New("legacy log directory has no event log file")

// preAppIDVersions are writer versions that predate application ids
// in the event stream.
var preAppIDVersions = []string{"1.0", "1.1"}

// Kind is the on-disk shape of an event log.
type Kind int

const (
	// KindFile is a single-file log.
	KindFile Kind = iota
	// KindLegacyDirectory is a directory-based log.
	KindLegacyDirectory
)

func (kind Kind) String() string {
	switch kind {
	case KindFile:
		return "file"
	case KindLegacyDirectory:
		return "legacy-directory"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// Entry is a resolved event log location.
type Entry struct {
	Kind Kind

	// Path is the store path of the file or directory. It is the
	// attempt's log location.
	Path string
	Name string

	modTime       int64
	hasModTime    bool
	completed     bool
	requiresAppID bool

	// Legacy directories only.
	primaryLog string
	codec      string
}

// Resolve turns a listing entry into an Entry. For a legacy directory
// it lists the children; a permission error there comes back wrapping
// logstore.ErrPermission.
func Resolve(ctx context.Context, store logstore.Store, info logstore.FileInfo) (*Entry, error) {
	entry := &Entry{Path: info.Path, Name: info.Name}
	if !info.IsDir {
		entry.Kind = KindFile
		entry.modTime = info.ModTime.UnixMilli()
		entry.hasModTime = true
		entry.completed = !strings.HasSuffix(info.Name, InProgressSuffix)
		entry.requiresAppID = true
		return entry, nil
	}

	entry.Kind = KindLegacyDirectory
	children, err := store.List(ctx, info.Path)
	if err != nil {
		return nil, fmt.Errorf("listing legacy log directory %s: %w", info.Path, err)
	}

	entry.requiresAppID = true
	for _, child := range children {
		if modTime := child.ModTime.UnixMilli(); !entry.hasModTime || modTime > entry.modTime {
			entry.modTime = modTime
			entry.hasModTime = true
		}
		switch name := child.Name; {
		case strings.HasPrefix(name, LogPrefix):
			entry.primaryLog = child.Path
		case strings.HasPrefix(name, CompressionPrefix):
			entry.codec = strings.TrimPrefix(name, CompressionPrefix)
		case strings.HasPrefix(name, VersionPrefix):
			entry.requiresAppID = !predatesAppIDs(strings.TrimPrefix(name, VersionPrefix))
		case name == ApplicationCompleteFile:
			entry.completed = true
		}
	}
	return entry, nil
}

func predatesAppIDs(version string) bool {
	return slices.Contains(preAppIDVersions, version)
}

// ModTime returns the effective modification time in Unix
// milliseconds. For a legacy directory it is the newest child's time;
// an empty legacy directory has none and is not a log yet.
func (e *Entry) ModTime() (int64, bool) { return e.modTime, e.hasModTime }

// Completed reports whether the application finished writing the log.
func (e *Entry) Completed() bool { return e.completed }

// RequiresAppID reports whether a replay without an application id is
// an error. Only legacy logs from writers older than application ids
// may lack one.
func (e *Entry) RequiresAppID() bool { return e.requiresAppID }

// Open opens the event stream for replay and returns it with the
// source name the replayer should see. A legacy stream is already
// decompressed; a modern stream is returned as stored and its codec
// is left to the replayer.
func (e *Entry) Open(ctx context.Context, store logstore.Store) (io.ReadCloser, string, error) {
	if e.Kind == KindFile {
		reader, err := store.Open(ctx, e.Path)
		if err != nil {
			return nil, "", err
		}
		return reader, e.Name, nil
	}

	if e.primaryLog == "" {
		return nil, "", fmt.Errorf("%s: %w", e.Path, ErrNoPrimaryLog)
	}

	// Resolve the codec before opening so a bad marker does not
	// leave a reader behind.
	if e.codec != "" && !eventcodec.Known(e.codec) {
		return nil, "", fmt.Errorf("%s: %w: %q", e.Path, eventcodec.ErrUnknownCodec, e.codec)
	}

	raw, err := store.Open(ctx, e.primaryLog)
	if err != nil {
		return nil, "", err
	}
	if e.codec == "" {
		return raw, e.primaryLog, nil
	}
	decompressed, err := eventcodec.NewReader(e.codec, raw)
	if err != nil {
		raw.Close()
		return nil, "", fmt.Errorf("%s: %w", e.Path, err)
	}
	return &stackedReader{ReadCloser: decompressed, underlying: raw}, e.primaryLog, nil
}

// stackedReader closes a decoder and the stream beneath it.
type stackedReader struct {
	io.ReadCloser
	underlying io.Closer
}

func (r *stackedReader) Close() error {
	return errors.Join(r.ReadCloser.Close(), r.underlying.Close())
}
