// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package history keeps an in-memory index of the application runs
// found in an event log directory.
//
// A [Scanner] lists the log directory on every tick, replays the logs
// modified since the last tick and folds the resulting attempts into
// an [Index]. A [Sweeper] removes completed attempts older than the
// configured age from the index and deletes their logs. A [Provider]
// owns one of each and drives them from a [clock.Clock].
//
// The index is published as an immutable [Listing]. Readers call
// [Index.Snapshot] and never take a lock; writers build a new Listing
// and swap it in. Applications in a Listing are ordered by the end
// time of their latest attempt, newest first, then by that attempt's
// start time. The order is maintained by the writers and is never
// recomputed on read.
//
// The scan watermark, the index and the pending deletions live only in
// memory. A restarted provider rebuilds everything from a full scan.
package history
