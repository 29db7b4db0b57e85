// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// RequireClosed waits until ch is closed (or delivers a value), failing
// the test after timeout. description says what was awaited and may be
// a format string followed by its arguments.
//
//	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "socket server ready")
func RequireClosed(tb testing.TB, ch <-chan struct{}, timeout time.Duration, description ...any) {
	tb.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
		tb.Fatalf("timed out after %v: %s", timeout, describe(description))
	}
}

func describe(description []any) string {
	switch {
	case len(description) == 0:
		return "waiting for channel close"
	case len(description) == 1:
		return fmt.Sprint(description[0])
	}
	if format, ok := description[0].(string); ok {
		return fmt.Sprintf(format, description[1:]...)
	}
	return fmt.Sprint(description...)
}
