// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import "testing"

func TestObjectPrefix(t *testing.T) {
	prefixed := newObjectPrefix("/spark-events/")
	if got := prefixed.key("app-1"); got != "spark-events/app-1" {
		t.Errorf("key(app-1) = %q", got)
	}
	if got := prefixed.dirKey(""); got != "spark-events/" {
		t.Errorf("dirKey(root) = %q", got)
	}
	if got := prefixed.dirKey("legacy"); got != "spark-events/legacy/" {
		t.Errorf("dirKey(legacy) = %q", got)
	}
	if got, ok := prefixed.relative("spark-events/legacy/"); !ok || got != "legacy" {
		t.Errorf("relative(common prefix) = %q, %v", got, ok)
	}
	if _, ok := prefixed.relative("other/app-1"); ok {
		t.Error("relative accepted a key outside the prefix")
	}

	bare := newObjectPrefix("")
	if got := bare.dirKey(""); got != "" {
		t.Errorf("bare dirKey(root) = %q", got)
	}
	if got, ok := bare.relative("app-1"); !ok || got != "app-1" {
		t.Errorf("bare relative = %q, %v", got, ok)
	}
	if got := prefixed.dirKeyWithBucket("logs"); got != "logs/spark-events" {
		t.Errorf("dirKeyWithBucket = %q", got)
	}
}
