// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures the S3-compatible backend.
type S3Options struct {
	// Endpoint is host[:port] of the S3 API, e.g. "minio:9000" or
	// "s3.amazonaws.com".
	Endpoint string

	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3 is a Store over an S3-compatible bucket prefix.
type S3 struct {
	client *minio.Client
	bucket string
	prefix objectPrefix
}

// NewS3 creates a client for bucket and roots the store at prefix.
// No request is made until the first operation.
func NewS3(bucket, prefix string, options S3Options) (*S3, error) {
	if options.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	client, err := minio.New(options.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(options.AccessKey, options.SecretKey, ""),
		Secure: options.UseSSL,
		Region: options.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client for %s: %w", options.Endpoint, err)
	}
	return &S3{client: client, bucket: bucket, prefix: newObjectPrefix(prefix)}, nil
}

func (s *S3) String() string { return "s3://" + s.prefix.dirKeyWithBucket(s.bucket) }

func (s *S3) List(ctx context.Context, dir string) ([]FileInfo, error) {
	cleaned, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}

	var infos []FileInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix.dirKey(cleaned),
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, classifyS3("listing "+cleaned, object.Err)
		}
		name, ok := s.prefix.relative(object.Key)
		if !ok || name == cleaned {
			continue
		}
		if object.Key[len(object.Key)-1] == '/' {
			infos = append(infos, FileInfo{Path: name, Name: baseName(name), IsDir: true})
			continue
		}
		infos = append(infos, FileInfo{
			Path:    name,
			Name:    baseName(name),
			ModTime: object.LastModified,
			Size:    object.Size,
		})
	}
	if len(infos) == 0 && cleaned != "" {
		if _, err := s.Stat(ctx, cleaned); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func (s *S3) Stat(ctx context.Context, name string) (FileInfo, error) {
	cleaned, err := cleanPath(name)
	if err != nil {
		return FileInfo{}, err
	}
	if cleaned != "" {
		object, err := s.client.StatObject(ctx, s.bucket, s.prefix.key(cleaned), minio.StatObjectOptions{})
		if err == nil {
			return FileInfo{Path: cleaned, Name: baseName(cleaned), ModTime: object.LastModified, Size: object.Size}, nil
		}
		if classified := classifyS3("stat "+cleaned, err); !errors.Is(classified, ErrNotExist) {
			return FileInfo{}, classified
		}
	}

	listContext, cancel := context.WithCancel(ctx)
	defer cancel()
	for object := range s.client.ListObjects(listContext, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix.dirKey(cleaned),
		Recursive: true,
		MaxKeys:   1,
	}) {
		if object.Err != nil {
			return FileInfo{}, classifyS3("stat "+cleaned, object.Err)
		}
		return FileInfo{Path: cleaned, Name: baseName(cleaned), IsDir: true}, nil
	}
	if cleaned == "" {
		return FileInfo{IsDir: true}, nil
	}
	return FileInfo{}, fmt.Errorf("stat %s: %w", cleaned, ErrNotExist)
}

func (s *S3) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	cleaned, err := cleanPath(name)
	if err != nil {
		return nil, err
	}
	object, err := s.client.GetObject(ctx, s.bucket, s.prefix.key(cleaned), minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyS3("opening "+cleaned, err)
	}
	// GetObject is lazy; Stat surfaces missing keys and access
	// errors before the caller starts reading.
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, classifyS3("opening "+cleaned, err)
	}
	return object, nil
}

func (s *S3) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *S3) RemoveAll(ctx context.Context, name string) error {
	cleaned, err := cleanPath(name)
	if err != nil {
		return err
	}
	if cleaned == "" {
		return fmt.Errorf("%w: refusing to remove the store root", ErrPermission)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, s.prefix.key(cleaned), minio.RemoveObjectOptions{}); err != nil {
		if classified := classifyS3("removing "+cleaned, err); !errors.Is(classified, ErrNotExist) {
			return classified
		}
	}
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix.dirKey(cleaned),
		Recursive: true,
	}) {
		if object.Err != nil {
			return classifyS3("removing "+cleaned, object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			if classified := classifyS3("removing "+object.Key, err); !errors.Is(classified, ErrNotExist) {
				return classified
			}
		}
	}
	return nil
}

func classifyS3(operation string, err error) error {
	response := minio.ToErrorResponse(err)
	switch {
	case response.Code == "NoSuchKey" || response.Code == "NoSuchBucket" || response.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %w", operation, ErrNotExist, err)
	case response.Code == "AccessDenied" || response.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w: %w", operation, ErrPermission, err)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", operation, err)
	default:
		return fmt.Errorf("%s: %w: %w", operation, ErrUnavailable, err)
	}
}
