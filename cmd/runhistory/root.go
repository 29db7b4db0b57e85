// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/runhistory/cmd/runhistory/cli"
	"github.com/bureau-foundation/runhistory/lib/clock"
	"github.com/bureau-foundation/runhistory/lib/service"
	"github.com/bureau-foundation/runhistory/lib/version"
)

const (
	socketEnvironmentVariable = "RUNHISTORY_SOCKET"
	defaultSocketPath         = "/run/bureau/runhistory.sock"

	// callTimeout bounds one request, including a full listing of a
	// large index.
	callTimeout = 30 * time.Second

	// notFoundExitCode is the exit status of a lookup that matched
	// nothing.
	notFoundExitCode = 2
)

// environment is what every command writes to and reads the time from.
type environment struct {
	out    io.Writer
	errOut io.Writer
	clock  clock.Clock
}

// Root builds the command tree. Results go to out; help and not-found
// messages go to errOut.
func Root(out, errOut io.Writer, clk clock.Clock) *cli.Command {
	env := &environment{out: out, errOut: errOut, clock: clk}
	return &cli.Command{
		Name: "runhistory",
		Description: `Query the run history index kept by runhistory-service.

Applications are listed in index order: the application whose latest
attempt ended most recently first, still-running applications last.`,
		HelpOutput: errOut,
		Subcommands: []*cli.Command{
			listCommand(env),
			showCommand(env),
			attemptCommand(env),
			statusCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(out, "runhistory %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// connection holds the --socket flag shared by every command.
type connection struct {
	SocketPath string
}

func (c *connection) addFlags(flagSet *pflag.FlagSet) {
	socketPath := os.Getenv(socketEnvironmentVariable)
	if socketPath == "" {
		socketPath = defaultSocketPath
	}
	flagSet.StringVar(&c.SocketPath, "socket", socketPath, "runhistory-service socket (env "+socketEnvironmentVariable+")")
}

// call sends one request with the default timeout.
func (c *connection) call(action string, fields map[string]any, result any) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return service.NewClient(c.SocketPath).Call(ctx, action, fields, result)
}

// notFound reports a lookup miss on errOut and turns it into an exit
// status; other errors pass through.
func (env *environment) notFound(err error) error {
	if !errors.Is(err, service.ErrNotFound) {
		return err
	}
	var serviceError *service.ServiceError
	if errors.As(err, &serviceError) {
		fmt.Fprintln(env.errOut, serviceError.Message)
	} else {
		fmt.Fprintln(env.errOut, err)
	}
	return &cli.ExitError{Code: notFoundExitCode}
}

// checkArgs checks the number of positional arguments.
func checkArgs(command string, args []string, minimum, maximum int) error {
	if len(args) < minimum || len(args) > maximum {
		if minimum == maximum {
			return fmt.Errorf("%s: expected %d argument(s), got %d", command, minimum, len(args))
		}
		return fmt.Errorf("%s: expected %d to %d arguments, got %d", command, minimum, maximum, len(args))
	}
	return nil
}
