// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import "strings"

// objectPrefix maps paths between a Store's relative namespace and
// the object keys of a bucket whose root is prefix.
type objectPrefix string

func newObjectPrefix(prefix string) objectPrefix {
	return objectPrefix(strings.Trim(prefix, "/"))
}

// key returns the object key for a relative path.
func (p objectPrefix) key(name string) string {
	if p == "" {
		return name
	}
	if name == "" {
		return string(p)
	}
	return string(p) + "/" + name
}

// dirKey returns the key prefix under which the children of the
// directory name live. It always ends in "/" except for the bucket
// root of an unprefixed store.
func (p objectPrefix) dirKey(name string) string {
	key := p.key(name)
	if key == "" {
		return ""
	}
	return key + "/"
}

// relative maps an object key (or common prefix) back to a store
// path. The second result is false for keys outside the prefix.
func (p objectPrefix) relative(key string) (string, bool) {
	key = strings.TrimSuffix(key, "/")
	if p == "" {
		return key, true
	}
	if key == string(p) {
		return "", true
	}
	rest, ok := strings.CutPrefix(key, string(p)+"/")
	return rest, ok
}

// dirKeyWithBucket renders bucket/prefix for display.
func (p objectPrefix) dirKeyWithBucket(bucket string) string {
	if p == "" {
		return bucket
	}
	return bucket + "/" + string(p)
}
