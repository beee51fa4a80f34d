// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/terrapoint-foundation/terrapoint/cmd/terrapoint/cli"
	"github.com/terrapoint-foundation/terrapoint/lib/extent"
)

// extentCommand inspects the persisted reduction under a working
// directory.
func extentCommand() *cli.Command {
	var workDir string

	flags := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("extent", pflag.ContinueOnError)
		flagSet.StringVar(&workDir, "wdir", ".", "working directory")
		return flagSet
	}

	show := &cli.Command{
		Name:    "show",
		Summary: "Show the persisted global extent and offset.",
		Flags:   flags,
		Run: func(args []string) error {
			record, err := extent.LoadRecord(workDir)
			if err != nil {
				return err
			}
			fmt.Printf("extent:  %s\n", record.Extent.String())
			fmt.Printf("offset:  (%g %g %g)\n", record.Offset.X, record.Offset.Y, record.Offset.Z)
			fmt.Printf("srid:    %d\n", record.SRID)
			fmt.Printf("files:   %d\n", record.Files)
			fmt.Printf("written: %s\n", record.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	return &cli.Command{
		Name:        "extent",
		Summary:     "Inspect the persisted extent reduction.",
		Subcommands: []*cli.Command{show},
	}
}
