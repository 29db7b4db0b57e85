// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local is a Store over a directory of the local filesystem.
type Local struct {
	root string
}

// NewLocal returns a store rooted at directory. The directory is not
// checked here; the history provider validates it at startup.
func NewLocal(directory string) *Local {
	return &Local{root: filepath.Clean(directory)}
}

func (s *Local) String() string { return "file://" + s.root }

func (s *Local) resolve(name string) (string, string, error) {
	cleaned, err := cleanPath(name)
	if err != nil {
		return "", "", err
	}
	return cleaned, filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// List returns the children of dir. A child that disappears between
// the directory read and its stat is left out.
func (s *Local) List(ctx context.Context, dir string) ([]FileInfo, error) {
	cleaned, full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, classifyLocal("listing "+full, err)
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, classifyLocal("stat "+entry.Name(), err)
		}
		infos = append(infos, localInfo(Join(cleaned, entry.Name()), info))
	}
	return infos, nil
}

func (s *Local) Stat(_ context.Context, name string) (FileInfo, error) {
	cleaned, full, err := s.resolve(name)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return FileInfo{}, classifyLocal("stat "+full, err)
	}
	return localInfo(cleaned, info), nil
}

func (s *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	_, full, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, classifyLocal("opening "+full, err)
	}
	return file, nil
}

func (s *Local) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *Local) RemoveAll(_ context.Context, name string) error {
	cleaned, full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if cleaned == "" {
		return fmt.Errorf("%w: refusing to remove the store root", ErrPermission)
	}
	if err := os.RemoveAll(full); err != nil {
		return classifyLocal("removing "+full, err)
	}
	return nil
}

func localInfo(name string, info fs.FileInfo) FileInfo {
	return FileInfo{
		Path:    name,
		Name:    baseName(name),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
		Size:    info.Size(),
	}
}

func classifyLocal(operation string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w: %w", operation, ErrNotExist, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: %w", operation, ErrPermission, err)
	default:
		return fmt.Errorf("%s: %w: %w", operation, ErrUnavailable, err)
	}
}
