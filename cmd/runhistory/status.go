// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/runhistory/cmd/runhistory/cli"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

type statusFlags struct {
	connection
	cli.JSONOutput
}

func statusCommand(env *environment) *cli.Command {
	var flags statusFlags

	return &cli.Command{
		Name:    "status",
		Summary: "Show scanner and retention status",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flags.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if err := checkArgs("status", args, 0, 0); err != nil {
				return err
			}

			var status historyschema.Status
			if err := flags.call(historyschema.ActionStatus, nil, &status); err != nil {
				return err
			}
			if done, err := flags.EmitJSON(env.out, status); done {
				return err
			}

			now := env.clock.Now()
			watermark := "none (no scan completed)"
			if status.Watermark >= 0 {
				watermark = fmt.Sprintf("%s (%s)", timestamp(status.Watermark), relativeTime(status.Watermark, now))
			}
			cleaner := "disabled"
			if status.CleanerEnabled {
				cleaner = fmt.Sprintf("enabled, last sweep %s, %s pending deletions",
					relativeTime(status.LastSweep, now), humanize.Comma(int64(status.PendingDeletions)))
			}
			uptime := time.Duration(status.UptimeSeconds * float64(time.Second))

			writer := tabwriter.NewWriter(env.out, 0, 0, 2, ' ', 0)
			for _, row := range [][2]string{
				{"Log directory", status.LogDirectory},
				{"Applications", humanize.Comma(int64(status.Applications))},
				{"Watermark", watermark},
				{"Last scan", relativeTime(status.LastScan, now)},
				{"Scans", fmt.Sprintf("%s (%s failed)", humanize.Comma(int64(status.ScanTicks)), humanize.Comma(int64(status.ScanFailures)))},
				{"Logs replayed", fmt.Sprintf("%s (%s failed)", humanize.Comma(int64(status.EntriesReplayed)), humanize.Comma(int64(status.ReplayFailures)))},
				{"Cleaner", cleaner},
				{"Sweeps", humanize.Comma(int64(status.SweepTicks))},
				{"Deletions", fmt.Sprintf("%s (%s failed)", humanize.Comma(int64(status.Deletions)), humanize.Comma(int64(status.DeletionFailures)))},
				{"Uptime", uptime.Truncate(time.Second).String()},
			} {
				fmt.Fprintf(writer, "%s:\t%s\n", row[0], row[1])
			}
			return writer.Flush()
		},
	}
}
