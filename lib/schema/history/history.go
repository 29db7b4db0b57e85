// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import "fmt"

// NotFinished is the EndTime of an attempt that is still running (or
// whose log was truncated before the end event).
const NotFinished int64 = -1

// NotStarted is the application name recorded when the event log
// never announced one.
const NotStarted = "<Not Started>"

// AttemptRecord is the summary of one replayed event log: a single
// run of an application.
type AttemptRecord struct {
	// LogLocation is the store path of the backing log file or legacy
	// log directory. It is unique per attempt and is what retention
	// deletes.
	LogLocation string `json:"log_location"`

	AppID   string `json:"app_id"`
	AppName string `json:"app_name"`

	// AttemptID distinguishes several runs of one application. Empty
	// when the application only ever has one attempt.
	AttemptID string `json:"attempt_id,omitempty"`

	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`

	// LastUpdated is the store modification time of the log. It is
	// what freshness and retention age are measured against, not
	// EndTime.
	LastUpdated int64 `json:"last_updated"`

	User      string `json:"user"`
	Completed bool   `json:"completed"`
}

// Running reports whether the attempt has no end time yet.
func (attempt *AttemptRecord) Running() bool {
	return attempt.EndTime == NotFinished
}

// Validate checks the fields every indexed attempt must carry.
func (attempt *AttemptRecord) Validate() error {
	if attempt.LogLocation == "" {
		return fmt.Errorf("attempt record: log_location is required")
	}
	if attempt.AppID == "" {
		return fmt.Errorf("attempt record %s: app_id is required", attempt.LogLocation)
	}
	if attempt.EndTime != NotFinished && attempt.EndTime < 0 {
		return fmt.Errorf("attempt record %s: end_time must be >= 0 or %d, got %d",
			attempt.LogLocation, NotFinished, attempt.EndTime)
	}
	return nil
}

// ApplicationRecord aggregates every known attempt of one
// application. Attempts are ordered by StartTime, newest first, and
// carry distinct AttemptIDs.
type ApplicationRecord struct {
	AppID string `json:"app_id"`

	// AppName is taken from the most recent attempt.
	AppName string `json:"app_name"`

	Attempts []AttemptRecord `json:"attempts"`
}

// Latest returns the attempt with the greatest start time. The
// record must have at least one attempt.
func (application *ApplicationRecord) Latest() *AttemptRecord {
	return &application.Attempts[0]
}

// Attempt returns the attempt whose AttemptID equals attemptID
// exactly. An empty attemptID only matches an attempt without an id;
// there is no "latest" fallback.
func (application *ApplicationRecord) Attempt(attemptID string) (AttemptRecord, bool) {
	for i := range application.Attempts {
		if application.Attempts[i].AttemptID == attemptID {
			return application.Attempts[i], true
		}
	}
	return AttemptRecord{}, false
}
