// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/runhistory/cmd/runhistory/cli"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

type listFlags struct {
	connection
	cli.JSONOutput
	Limit     int
	Running   bool
	Completed bool
}

func listCommand(env *environment) *cli.Command {
	var flags listFlags

	return &cli.Command{
		Name:    "list",
		Summary: "List applications in index order",
		Description: `List the indexed applications, most recently finished first.

--running and --completed look at each application's latest attempt.`,
		Usage: "runhistory list [--limit N] [--running|--completed] [flags]",
		Examples: []cli.Example{
			{Description: "The ten most recently finished applications", Command: "runhistory list --completed --limit 10"},
			{Description: "Everything still running, as JSON", Command: "runhistory list --running --json"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flags.AddJSONFlag(flagSet)
			flagSet.IntVarP(&flags.Limit, "limit", "n", 0, "show at most N applications (0 for all)")
			flagSet.BoolVar(&flags.Running, "running", false, "only applications whose latest attempt is in progress")
			flagSet.BoolVar(&flags.Completed, "completed", false, "only applications whose latest attempt has completed")
			return flagSet
		},
		Run: func(args []string) error {
			if err := checkArgs("list", args, 0, 0); err != nil {
				return err
			}
			if flags.Running && flags.Completed {
				return errors.New("--running and --completed are mutually exclusive")
			}
			if flags.Limit < 0 {
				return fmt.Errorf("--limit must not be negative, got %d", flags.Limit)
			}

			fields := map[string]any{}
			if flags.Limit > 0 {
				fields["limit"] = flags.Limit
			}
			if flags.Running || flags.Completed {
				fields["completed"] = flags.Completed
			}

			var response historyschema.ListResponse
			if err := flags.call(historyschema.ActionListApplications, fields, &response); err != nil {
				return err
			}
			if done, err := flags.EmitJSON(env.out, response.Applications); done {
				return err
			}

			if len(response.Applications) == 0 {
				fmt.Fprintf(env.out, "No applications (%d indexed).\n", response.Total)
				return nil
			}

			now := env.clock.Now()
			writer := tabwriter.NewWriter(env.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "APP ID\tNAME\tATTEMPTS\tSTATE\tSTARTED\tDURATION\tUSER")
			for i := range response.Applications {
				application := &response.Applications[i]
				latest := application.Latest()
				fmt.Fprintf(writer, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
					application.AppID,
					orDash(application.AppName),
					len(application.Attempts),
					attemptState(latest),
					relativeTime(latest.StartTime, now),
					attemptDuration(latest, now),
					orDash(latest.User),
				)
			}
			if err := writer.Flush(); err != nil {
				return err
			}
			if len(response.Applications) < response.Total {
				fmt.Fprintf(env.out, "\nShowing %d of %d applications.\n", len(response.Applications), response.Total)
			}
			return nil
		},
	}
}
