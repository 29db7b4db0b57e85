// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"list", "list", 0},
		{"lsit", "list", 2},
		{"stauts", "status", 2},
		{"show", "shows", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
		if got := levenshtein(test.b, test.a); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d (symmetry)", test.b, test.a, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "list"}, {Name: "show"}, {Name: "attempt"}, {Name: "status"}}
	for input, want := range map[string]string{
		"lst":       "list",
		"attmept":   "attempt",
		"staus":     "status",
		"xyzzyplgh": "",
	} {
		if got := suggestCommand(input, commands); got != want {
			t.Errorf("suggestCommand(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
		flagSet.String("socket", "", "")
		flagSet.Bool("running", false, "")
		flagSet.Bool("completed", false, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "typo", args: []string{"--sokcet"}, want: "--socket"},
		{name: "with equals", args: []string{"--scoket=/tmp/x.sock"}, want: "--socket"},
		{name: "skips defined flags", args: []string{"--socket", "/x", "--runing"}, want: "--running"},
		{name: "nothing close", args: []string{"--zzzzzzzzz"}, want: ""},
		{name: "positional only", args: []string{"app-1"}, want: ""},
		{name: "after terminator", args: []string{"--", "--runing"}, want: ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, makeFlagSet()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
