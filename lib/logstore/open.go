// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Options carries backend-specific settings for Open.
type Options struct {
	S3  S3Options
	GCS GCSOptions
}

// Open returns the Store for a log directory location:
//
//	/var/log/events            local directory
//	file:///var/log/events     local directory
//	gs://bucket/prefix         Google Cloud Storage
//	s3://bucket/prefix         S3-compatible store (options.S3.Endpoint required)
//	mem://                     empty in-memory store
//
// The returned close function releases backend clients and is never
// nil.
func Open(ctx context.Context, location string, options Options) (Store, func() error, error) {
	noClose := func() error { return nil }

	if !strings.Contains(location, "://") {
		if location == "" {
			return nil, nil, fmt.Errorf("log directory location is empty")
		}
		return NewLocal(location), noClose, nil
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log directory %q: %w", location, err)
	}
	prefix := strings.Trim(parsed.Path, "/")

	switch parsed.Scheme {
	case "file":
		if parsed.Path == "" {
			return nil, nil, fmt.Errorf("file location %q has no path", location)
		}
		return NewLocal(parsed.Path), noClose, nil
	case "mem":
		return NewMemory(), noClose, nil
	case "gs":
		if parsed.Host == "" {
			return nil, nil, fmt.Errorf("gs location %q has no bucket", location)
		}
		store, err := NewGCS(ctx, parsed.Host, prefix, options.GCS)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "s3":
		if parsed.Host == "" {
			return nil, nil, fmt.Errorf("s3 location %q has no bucket", location)
		}
		store, err := NewS3(parsed.Host, prefix, options.S3)
		if err != nil {
			return nil, nil, err
		}
		return store, noClose, nil
	default:
		return nil, nil, fmt.Errorf("unsupported log directory scheme %q", parsed.Scheme)
	}
}
