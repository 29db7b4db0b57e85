// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package history defines the record types of the application run
// index: one AttemptRecord per replayed event log, aggregated into an
// ApplicationRecord per application id. It also defines the request
// and response shapes of the runhistory service socket actions.
//
// All timestamps are Unix milliseconds, matching the event log wire
// convention. An EndTime of NotFinished marks an attempt that has not
// ended yet.
package history
