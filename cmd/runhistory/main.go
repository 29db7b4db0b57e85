// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/bureau-foundation/runhistory/lib/clock"
	"github.com/bureau-foundation/runhistory/lib/process"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	return Root(os.Stdout, os.Stderr, clock.Real()).Execute(os.Args[1:])
}
