// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSOptions configures the Google Cloud Storage backend.
type GCSOptions struct {
	// CredentialsFile is a service account key file. Empty means
	// application default credentials.
	CredentialsFile string
}

// GCS is a Store over a Google Cloud Storage bucket prefix.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix objectPrefix
}

// NewGCS connects to bucket and roots the store at prefix.
func NewGCS(ctx context.Context, bucket, prefix string, options GCSOptions) (*GCS, error) {
	var clientOptions []option.ClientOption
	if options.CredentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(options.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &GCS{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		prefix: newObjectPrefix(prefix),
	}, nil
}

// Close releases the underlying client.
func (s *GCS) Close() error { return s.client.Close() }

func (s *GCS) String() string { return "gs://" + s.prefix.dirKeyWithBucket(s.name) }

func (s *GCS) List(ctx context.Context, dir string) ([]FileInfo, error) {
	cleaned, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}
	query := &storage.Query{Prefix: s.prefix.dirKey(cleaned), Delimiter: "/"}

	var infos []FileInfo
	objects := s.bucket.Objects(ctx, query)
	for {
		attrs, err := objects.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyGCS("listing "+cleaned, err)
		}
		if attrs.Prefix != "" {
			name, ok := s.prefix.relative(attrs.Prefix)
			if ok {
				infos = append(infos, FileInfo{Path: name, Name: baseName(name), IsDir: true})
			}
			continue
		}
		name, ok := s.prefix.relative(attrs.Name)
		// Skip the zero-byte placeholder some tools create for the
		// directory itself.
		if !ok || name == cleaned {
			continue
		}
		infos = append(infos, FileInfo{
			Path:    name,
			Name:    baseName(name),
			ModTime: attrs.Updated,
			Size:    attrs.Size,
		})
	}
	if len(infos) == 0 && cleaned != "" {
		// Object stores list a missing prefix as empty; tell the
		// caller the directory is gone.
		if _, err := s.Stat(ctx, cleaned); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func (s *GCS) Stat(ctx context.Context, name string) (FileInfo, error) {
	cleaned, err := cleanPath(name)
	if err != nil {
		return FileInfo{}, err
	}
	if cleaned != "" {
		attrs, err := s.bucket.Object(s.prefix.key(cleaned)).Attrs(ctx)
		if err == nil {
			return FileInfo{Path: cleaned, Name: baseName(cleaned), ModTime: attrs.Updated, Size: attrs.Size}, nil
		}
		if !errors.Is(err, storage.ErrObjectNotExist) {
			return FileInfo{}, classifyGCS("stat "+cleaned, err)
		}
	}

	// No object: it is a directory if anything lives under it.
	objects := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix.dirKey(cleaned)})
	if _, err := objects.Next(); err != nil {
		if errors.Is(err, iterator.Done) {
			if cleaned == "" {
				// An empty bucket root still exists.
				return FileInfo{IsDir: true}, nil
			}
			return FileInfo{}, fmt.Errorf("stat %s: %w", cleaned, ErrNotExist)
		}
		return FileInfo{}, classifyGCS("stat "+cleaned, err)
	}
	return FileInfo{Path: cleaned, Name: baseName(cleaned), IsDir: true}, nil
}

func (s *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	cleaned, err := cleanPath(name)
	if err != nil {
		return nil, err
	}
	reader, err := s.bucket.Object(s.prefix.key(cleaned)).NewReader(ctx)
	if err != nil {
		return nil, classifyGCS("opening "+cleaned, err)
	}
	return reader, nil
}

func (s *GCS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *GCS) RemoveAll(ctx context.Context, name string) error {
	cleaned, err := cleanPath(name)
	if err != nil {
		return err
	}
	if cleaned == "" {
		return fmt.Errorf("%w: refusing to remove the store root", ErrPermission)
	}

	err = s.bucket.Object(s.prefix.key(cleaned)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return classifyGCS("removing "+cleaned, err)
	}

	objects := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix.dirKey(cleaned)})
	for {
		attrs, err := objects.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return classifyGCS("removing "+cleaned, err)
		}
		err = s.bucket.Object(attrs.Name).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return classifyGCS("removing "+attrs.Name, err)
		}
	}
}

func classifyGCS(operation string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%s: %w: %w", operation, ErrNotExist, err)
	}
	var apiError *googleapi.Error
	if errors.As(err, &apiError) {
		switch apiError.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %w", operation, ErrPermission, err)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", operation, ErrNotExist, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrUnavailable, err)
}
