// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/runhistory/cmd/runhistory/cli"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

type attemptFlags struct {
	connection
	cli.JSONOutput
}

func attemptCommand(env *environment) *cli.Command {
	var flags attemptFlags

	return &cli.Command{
		Name:    "attempt",
		Summary: "Show one attempt of an application",
		Description: `Show one attempt of an application.

The attempt id must match exactly. Without an attempt id the latest
attempt is shown.`,
		Usage: "runhistory attempt <app-id> [attempt-id] [flags]",
		Examples: []cli.Example{
			{Description: "Second attempt of an application", Command: "runhistory attempt application_1700000000000_0042 2"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("attempt", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flags.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if err := checkArgs("attempt", args, 1, 2); err != nil {
				return err
			}

			var attempt historyschema.AttemptRecord
			if len(args) == 2 {
				err := flags.call(historyschema.ActionGetAttempt,
					map[string]any{"app_id": args[0], "attempt_id": args[1]}, &attempt)
				if err != nil {
					return env.notFound(err)
				}
			} else {
				var application historyschema.ApplicationRecord
				err := flags.call(historyschema.ActionGetApplication, map[string]any{"app_id": args[0]}, &application)
				if err != nil {
					return env.notFound(err)
				}
				attempt = *application.Latest()
			}

			if done, err := flags.EmitJSON(env.out, attempt); done {
				return err
			}

			now := env.clock.Now()
			writer := tabwriter.NewWriter(env.out, 0, 0, 2, ' ', 0)
			for _, row := range [][2]string{
				{"Application", attempt.AppID},
				{"Name", orDash(attempt.AppName)},
				{"Attempt", orDash(attempt.AttemptID)},
				{"State", attemptState(&attempt)},
				{"User", orDash(attempt.User)},
				{"Started", fmt.Sprintf("%s (%s)", timestamp(attempt.StartTime), relativeTime(attempt.StartTime, now))},
				{"Ended", endedColumn(&attempt, now)},
				{"Duration", attemptDuration(&attempt, now)},
				{"Updated", fmt.Sprintf("%s (%s)", timestamp(attempt.LastUpdated), relativeTime(attempt.LastUpdated, now))},
				{"Log", attempt.LogLocation},
			} {
				fmt.Fprintf(writer, "%s:\t%s\n", row[0], row[1])
			}
			return writer.Flush()
		},
	}
}

func endedColumn(attempt *historyschema.AttemptRecord, now time.Time) string {
	if attempt.Running() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", timestamp(attempt.EndTime), relativeTime(attempt.EndTime, now))
}
