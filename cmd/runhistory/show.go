// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/runhistory/cmd/runhistory/cli"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

type showFlags struct {
	connection
	cli.JSONOutput
}

func showCommand(env *environment) *cli.Command {
	var flags showFlags

	return &cli.Command{
		Name:    "show",
		Summary: "Show one application and its attempts",
		Usage:   "runhistory show <app-id> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("show", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flags.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if err := checkArgs("show", args, 1, 1); err != nil {
				return err
			}

			var application historyschema.ApplicationRecord
			err := flags.call(historyschema.ActionGetApplication, map[string]any{"app_id": args[0]}, &application)
			if err != nil {
				return env.notFound(err)
			}
			if done, err := flags.EmitJSON(env.out, application); done {
				return err
			}

			fmt.Fprintf(env.out, "Application: %s\n", application.AppID)
			fmt.Fprintf(env.out, "Name:        %s\n", orDash(application.AppName))
			fmt.Fprintf(env.out, "Attempts:    %d\n\n", len(application.Attempts))

			now := env.clock.Now()
			writer := tabwriter.NewWriter(env.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "ATTEMPT\tSTATE\tSTARTED\tDURATION\tUPDATED\tLOG")
			for i := range application.Attempts {
				attempt := &application.Attempts[i]
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
					orDash(attempt.AttemptID),
					attemptState(attempt),
					relativeTime(attempt.StartTime, now),
					attemptDuration(attempt, now),
					relativeTime(attempt.LastUpdated, now),
					attempt.LogLocation,
				)
			}
			return writer.Flush()
		},
	}
}
