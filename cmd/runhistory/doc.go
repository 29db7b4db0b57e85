// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// runhistory queries a running runhistory-service over its Unix socket.
//
//	runhistory list [--limit N] [--running|--completed] [--json]
//	runhistory show <app-id> [--json]
//	runhistory attempt <app-id> [attempt-id] [--json]
//	runhistory status [--json]
//
// The socket is taken from --socket, then RUNHISTORY_SOCKET, then
// /run/bureau/runhistory.sock. A lookup that matches nothing exits
// with status 2.
package main
