// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] creates a temporary directory in /tmp for Unix domain
// sockets; t.TempDir() paths can exceed the 108-byte socket path limit.
//
// [RequireClosed] is the timeout safety valve for readiness and
// shutdown channels. It is the only place tests wait on the wall clock;
// everything time-dependent runs on clock.Fake.
package testutil
