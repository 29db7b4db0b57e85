// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

// Socket action names served by runhistory-service.
const (
	ActionListApplications = "list-applications"
	ActionGetApplication   = "get-application"
	ActionGetAttempt       = "get-attempt"
	ActionStatus           = "status"
)

// ListRequest filters a list-applications call. Zero values mean no
// filtering.
type ListRequest struct {
	Limit int `cbor:"limit,omitempty"`

	// Completed, when set, keeps only applications whose latest
	// attempt has (true) or has not (false) completed.
	Completed *bool `cbor:"completed,omitempty"`
}

// ListResponse carries applications in index order.
type ListResponse struct {
	Applications []ApplicationRecord `json:"applications"`

	// Total is the size of the whole index before filtering and
	// limiting.
	Total int `json:"total"`
}

// ApplicationRequest names one application.
type ApplicationRequest struct {
	AppID string `cbor:"app_id"`
}

// AttemptRequest names one attempt. AttemptID is matched exactly.
type AttemptRequest struct {
	AppID     string `cbor:"app_id"`
	AttemptID string `cbor:"attempt_id,omitempty"`
}

// Status reports the state of the scanner and retention sweeper.
type Status struct {
	LogDirectory string `json:"log_directory"`

	// Watermark is the greatest log modification time (Unix ms)
	// processed so far, -1 before the first scan completes.
	Watermark int64 `json:"watermark"`

	Applications     int  `json:"applications"`
	PendingDeletions int  `json:"pending_deletions"`
	CleanerEnabled   bool `json:"cleaner_enabled"`

	ScanTicks        uint64 `json:"scan_ticks"`
	ScanFailures     uint64 `json:"scan_failures"`
	EntriesReplayed  uint64 `json:"entries_replayed"`
	ReplayFailures   uint64 `json:"replay_failures"`
	SweepTicks       uint64 `json:"sweep_ticks"`
	Deletions        uint64 `json:"deletions"`
	DeletionFailures uint64 `json:"deletion_failures"`

	// LastScan and LastSweep are completion times in Unix ms, zero
	// if the task has not completed yet.
	LastScan  int64 `json:"last_scan"`
	LastSweep int64 `json:"last_sweep"`

	UptimeSeconds float64 `json:"uptime_seconds"`
}
