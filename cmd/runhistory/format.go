// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

// relativeTime renders a Unix millisecond timestamp relative to now,
// e.g. "3 hours ago".
func relativeTime(milliseconds int64, now time.Time) string {
	if milliseconds <= 0 {
		return "-"
	}
	return humanize.RelTime(time.UnixMilli(milliseconds), now, "ago", "from now")
}

// attemptDuration is how long the attempt ran, or has been running.
func attemptDuration(attempt *historyschema.AttemptRecord, now time.Time) string {
	if attempt.StartTime <= 0 {
		return "-"
	}
	end := now
	if !attempt.Running() {
		end = time.UnixMilli(attempt.EndTime)
	}
	return strings.TrimSpace(humanize.RelTime(time.UnixMilli(attempt.StartTime), end, "", ""))
}

// attemptState summarizes an attempt in one word. A log that is no
// longer in progress is "completed" even if it never recorded an end.
func attemptState(attempt *historyschema.AttemptRecord) string {
	switch {
	case attempt.Completed:
		return "completed"
	case attempt.Running():
		return "running"
	default:
		return "ending"
	}
}

// timestamp renders Unix milliseconds as RFC 3339 in UTC.
func timestamp(milliseconds int64) string {
	if milliseconds < 0 {
		return "-"
	}
	return time.UnixMilli(milliseconds).UTC().Format(time.RFC3339)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
