// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Terrapoint is the operator CLI: environment checks and working
// directory inspection for the staged ingestion pipeline driven by
// terrapoint-load.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/terrapoint-foundation/terrapoint/cmd/terrapoint/cli"
	"github.com/terrapoint-foundation/terrapoint/lib/version"
)

func main() {
	root := &cli.Command{
		Name:    "terrapoint",
		Summary: "Operator tools for the Terrapoint ingestion pipeline.",
		Subcommands: []*cli.Command{
			checkCommand(),
			extentCommand(),
			versionCommand(),
		},
	}
	if err := root.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information.",
		Flags:   func() *pflag.FlagSet { return pflag.NewFlagSet("version", pflag.ContinueOnError) },
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}
