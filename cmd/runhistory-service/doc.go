// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// runhistory-service indexes the event logs under one log directory and
// serves the index on a Unix socket.
//
// On startup it loads the configuration file (--config, or the path in
// RUNHISTORY_CONFIG), opens the log directory store, checks that the
// directory exists and runs one full scan before it starts listening.
// After that the index is refreshed every update_interval and, with the
// cleaner enabled, expired logs are deleted every cleaner.interval.
//
// Socket actions (CBOR, one request per connection):
//
//   - list-applications: applications in index order, with optional
//     limit and completed filters
//   - get-application: one application by app_id
//   - get-attempt: one attempt by app_id and exact attempt_id
//   - status: scanner and sweeper counters
//
// Lookups that match nothing fail with code "not_found".
package main
