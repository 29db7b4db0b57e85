// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string, modTime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("setting times on %s: %v", path, err)
	}
}

func TestLocalListStatOpen(t *testing.T) {
	root := t.TempDir()
	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(root, "app-1"), "events", modTime)
	writeFile(t, filepath.Join(root, "legacy", "EVENT_LOG_1"), "legacy events", modTime)

	ctx := context.Background()
	store := NewLocal(root)

	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	if len(infos) != 2 {
		t.Fatalf("List returned %d entries, want 2: %+v", len(infos), infos)
	}
	if infos[0].Path != "app-1" || infos[0].IsDir || !infos[0].ModTime.Equal(modTime) {
		t.Errorf("app-1 info = %+v", infos[0])
	}
	if infos[1].Path != "legacy" || !infos[1].IsDir {
		t.Errorf("legacy info = %+v", infos[1])
	}

	children, err := store.List(ctx, "legacy")
	if err != nil {
		t.Fatalf("List(legacy): %v", err)
	}
	if len(children) != 1 || children[0].Path != "legacy/EVENT_LOG_1" || children[0].Name != "EVENT_LOG_1" {
		t.Fatalf("List(legacy) = %+v", children)
	}

	reader, err := store.Open(ctx, "legacy/EVENT_LOG_1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if string(data) != "legacy events" {
		t.Errorf("content = %q", data)
	}

	root2, err := store.Stat(ctx, "")
	if err != nil || !root2.IsDir {
		t.Errorf("Stat(root) = %+v, %v", root2, err)
	}
}

func TestLocalNotExist(t *testing.T) {
	ctx := context.Background()
	store := NewLocal(t.TempDir())

	if _, err := store.Stat(ctx, "missing"); !errors.Is(err, ErrNotExist) {
		t.Errorf("Stat(missing) error = %v, want ErrNotExist", err)
	}
	if _, err := store.List(ctx, "missing"); !errors.Is(err, ErrNotExist) {
		t.Errorf("List(missing) error = %v, want ErrNotExist", err)
	}
	exists, err := store.Exists(ctx, "missing")
	if err != nil || exists {
		t.Errorf("Exists(missing) = %v, %v", exists, err)
	}
}

func TestLocalRemoveAll(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeFile(t, filepath.Join(root, "legacy", "EVENT_LOG_1"), "x", now)
	writeFile(t, filepath.Join(root, "legacy", "APPLICATION_COMPLETE"), "", now)

	ctx := context.Background()
	store := NewLocal(root)
	if err := store.RemoveAll(ctx, "legacy"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if exists, _ := store.Exists(ctx, "legacy"); exists {
		t.Error("legacy still exists after RemoveAll")
	}
	// Removing again is not an error.
	if err := store.RemoveAll(ctx, "legacy"); err != nil {
		t.Errorf("second RemoveAll: %v", err)
	}
	if err := store.RemoveAll(ctx, ""); !errors.Is(err, ErrPermission) {
		t.Errorf("RemoveAll(root) error = %v, want ErrPermission", err)
	}
}

func TestLocalPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "EVENT_LOG_1"), "x", time.Now())
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	_, err := NewLocal(root).List(context.Background(), "locked")
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("List(locked) error = %v, want ErrPermission", err)
	}
}

func TestPathsCannotEscapeRoot(t *testing.T) {
	store := NewLocal(t.TempDir())
	if _, err := store.Open(context.Background(), "../etc/passwd"); !errors.Is(err, ErrPermission) {
		t.Fatalf("Open(../etc/passwd) error = %v, want ErrPermission", err)
	}
}
