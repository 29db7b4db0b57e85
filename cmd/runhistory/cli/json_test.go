// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
)

func TestEmitJSON(t *testing.T) {
	var output JSONOutput
	flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
	output.AddJSONFlag(flagSet)

	var buffer bytes.Buffer
	done, err := output.EmitJSON(&buffer, []string{"a"})
	if done || err != nil || buffer.Len() != 0 {
		t.Fatalf("EmitJSON without --json = (%v, %v), wrote %q", done, err, buffer.String())
	}

	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatal(err)
	}
	var nilSlice []string
	done, err = output.EmitJSON(&buffer, nilSlice)
	if !done || err != nil {
		t.Fatalf("EmitJSON with --json = (%v, %v)", done, err)
	}
	if got := buffer.String(); got != "[]\n" {
		t.Errorf("nil slice written as %q, want %q", got, "[]\n")
	}
}
