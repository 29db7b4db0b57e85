// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers shared by the runhistory
// binaries. Fatal is for errors returned from run() before or after the
// structured logger exists; everything else goes through slog.
package process
