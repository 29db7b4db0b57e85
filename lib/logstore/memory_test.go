// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestMemoryTree(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	modTime := time.UnixMilli(1000)
	store.WriteFile("legacy/EVENT_LOG_1", []byte("events"), modTime)
	store.WriteFile("app-1.inprogress", []byte("more"), modTime.Add(time.Second))

	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 || infos[0].Path != "app-1.inprogress" || infos[1].Path != "legacy" || !infos[1].IsDir {
		t.Fatalf("List = %+v", infos)
	}

	reader, err := store.Open(ctx, "legacy/EVENT_LOG_1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(reader)
	if string(data) != "events" {
		t.Errorf("content = %q", data)
	}

	if _, err := store.Open(ctx, "legacy"); err == nil {
		t.Error("Open(directory) succeeded")
	}
}

func TestMemoryInjectedFailures(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	store.Mkdir("locked", time.UnixMilli(5))
	store.Fail(OpList, "locked", ErrPermission)

	if _, err := store.List(ctx, "locked"); !errors.Is(err, ErrPermission) {
		t.Fatalf("List(locked) error = %v, want ErrPermission", err)
	}

	store.Fail(OpList, "locked", nil)
	if _, err := store.List(ctx, "locked"); err != nil {
		t.Fatalf("List(locked) after clearing failure: %v", err)
	}
}

func TestMemoryRemoveAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	store.WriteFile("legacy/EVENT_LOG_1", nil, time.UnixMilli(1))
	store.WriteFile("legacy/APPLICATION_COMPLETE", nil, time.UnixMilli(1))
	store.WriteFile("legacy-other", nil, time.UnixMilli(1))

	store.Fail(OpRemove, "legacy", ErrUnavailable)
	if err := store.RemoveAll(ctx, "legacy"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RemoveAll error = %v, want ErrUnavailable", err)
	}
	store.Fail(OpRemove, "legacy", nil)
	if err := store.RemoveAll(ctx, "legacy"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if got := store.Removals("legacy"); got != 2 {
		t.Errorf("Removals = %d, want 2", got)
	}
	if exists, _ := store.Exists(ctx, "legacy/EVENT_LOG_1"); exists {
		t.Error("child survived RemoveAll")
	}
	if exists, _ := store.Exists(ctx, "legacy-other"); !exists {
		t.Error("sibling with shared name prefix was removed")
	}
}
