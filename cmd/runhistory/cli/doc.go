// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the runhistory
// CLI: a [Command] tree dispatched by the first positional argument,
// pflag flag sets created lazily per command, structured help output,
// and "did you mean" suggestions for mistyped commands and flags.
//
// [JSONOutput] is embedded in a command's flag struct to add --json;
// [ExitError] lets a command choose its exit code after printing its
// own output.
package cli
