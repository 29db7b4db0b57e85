// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Op names a Store operation for failure injection on a Memory store.
type Op string

const (
	OpList   Op = "list"
	OpStat   Op = "stat"
	OpOpen   Op = "open"
	OpRemove Op = "remove"
)

// Memory is an in-process Store. Directories are explicit nodes;
// adding a file creates its missing parents with the file's
// modification time.
type Memory struct {
	mu       sync.Mutex
	nodes    map[string]*memoryNode
	failures map[failureKey]error
	removals map[string]int
}

type memoryNode struct {
	dir     bool
	data    []byte
	modTime time.Time
}

type failureKey struct {
	op   Op
	path string
}

// NewMemory returns an empty store containing only the root
// directory.
func NewMemory() *Memory {
	return &Memory{
		nodes:    map[string]*memoryNode{"": {dir: true}},
		failures: make(map[failureKey]error),
		removals: make(map[string]int),
	}
}

func (m *Memory) String() string { return "mem://" }

// WriteFile creates or replaces a file.
func (m *Memory) WriteFile(name string, data []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cleaned, err := cleanPath(name)
	if err != nil {
		panic(err)
	}
	m.mkdirAllLocked(parentPath(cleaned), modTime)
	m.nodes[cleaned] = &memoryNode{data: append([]byte(nil), data...), modTime: modTime}
}

// Mkdir creates a directory and its missing parents.
func (m *Memory) Mkdir(name string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cleaned, err := cleanPath(name)
	if err != nil {
		panic(err)
	}
	m.mkdirAllLocked(cleaned, modTime)
}

// Fail makes every subsequent op on name return err. A nil err clears
// the injected failure.
func (m *Memory) Fail(op Op, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := failureKey{op: op, path: name}
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// Removals returns how many times RemoveAll was attempted on name,
// including failed attempts.
func (m *Memory) Removals(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removals[name]
}

func (m *Memory) mkdirAllLocked(name string, modTime time.Time) {
	for current := name; ; current = parentPath(current) {
		if _, exists := m.nodes[current]; exists {
			return
		}
		m.nodes[current] = &memoryNode{dir: true, modTime: modTime}
		if current == "" {
			return
		}
	}
}

func (m *Memory) injected(op Op, name string) error {
	if err, ok := m.failures[failureKey{op: op, path: name}]; ok {
		return fmt.Errorf("%s %s: %w", op, name, err)
	}
	return nil
}

func (m *Memory) List(ctx context.Context, dir string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cleaned, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}
	if err := m.injected(OpList, cleaned); err != nil {
		return nil, err
	}
	node, ok := m.nodes[cleaned]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", cleaned, ErrNotExist)
	}
	if !node.dir {
		return nil, fmt.Errorf("listing %s: not a directory: %w", cleaned, ErrUnavailable)
	}

	var infos []FileInfo
	for name, child := range m.nodes {
		if name == "" || parentPath(name) != cleaned {
			continue
		}
		infos = append(infos, memoryInfo(name, child))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func (m *Memory) Stat(_ context.Context, name string) (FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleaned, err := cleanPath(name)
	if err != nil {
		return FileInfo{}, err
	}
	if err := m.injected(OpStat, cleaned); err != nil {
		return FileInfo{}, err
	}
	node, ok := m.nodes[cleaned]
	if !ok {
		return FileInfo{}, fmt.Errorf("stat %s: %w", cleaned, ErrNotExist)
	}
	return memoryInfo(cleaned, node), nil
}

func (m *Memory) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleaned, err := cleanPath(name)
	if err != nil {
		return nil, err
	}
	if err := m.injected(OpOpen, cleaned); err != nil {
		return nil, err
	}
	node, ok := m.nodes[cleaned]
	if !ok {
		return nil, fmt.Errorf("opening %s: %w", cleaned, ErrNotExist)
	}
	if node.dir {
		return nil, fmt.Errorf("opening %s: is a directory: %w", cleaned, ErrUnavailable)
	}
	return io.NopCloser(bytes.NewReader(node.data)), nil
}

func (m *Memory) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (m *Memory) RemoveAll(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleaned, err := cleanPath(name)
	if err != nil {
		return err
	}
	m.removals[cleaned]++
	if err := m.injected(OpRemove, cleaned); err != nil {
		return err
	}
	if cleaned == "" {
		return fmt.Errorf("%w: refusing to remove the store root", ErrPermission)
	}
	for existing := range m.nodes {
		if existing == cleaned || strings.HasPrefix(existing, cleaned+"/") {
			delete(m.nodes, existing)
		}
	}
	return nil
}

func memoryInfo(name string, node *memoryNode) FileInfo {
	return FileInfo{
		Path:    name,
		Name:    baseName(name),
		ModTime: node.modTime,
		IsDir:   node.dir,
		Size:    int64(len(node.data)),
	}
}

func parentPath(name string) string {
	index := strings.LastIndex(name, "/")
	if index < 0 {
		return ""
	}
	return name[:index]
}
