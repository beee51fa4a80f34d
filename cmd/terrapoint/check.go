// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/pflag"

	"github.com/terrapoint-foundation/terrapoint/cmd/terrapoint/cli"
	"github.com/terrapoint-foundation/terrapoint/lib/config"
	"github.com/terrapoint-foundation/terrapoint/lib/pdal"
	"github.com/terrapoint-foundation/terrapoint/lib/pgclient"
	"github.com/terrapoint-foundation/terrapoint/lib/tool"
)

// checkCommand verifies the pipeline's external dependencies: the
// metadata and ingestion tools, PostgreSQL reachability, and the
// point-cloud extensions.
func checkCommand() *cli.Command {
	var (
		host       string
		user       string
		database   string
		configPath string
	)

	flags := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
		flagSet.StringVar(&host, "host", "localhost", "database host")
		flagSet.StringVar(&user, "user", "postgres", "database user")
		flagSet.StringVar(&database, "db", "postgres", "database to connect to for checks")
		flagSet.StringVar(&configPath, "config", "", "yaml config file (or TERRAPOINT_CONFIG)")
		return flagSet
	}

	return &cli.Command{
		Name:    "check",
		Summary: "Check external tools, PostgreSQL, and required extensions.",
		Flags:   flags,
		Run: func(args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx := context.Background()
			failed := 0

			report := func(name string, value string, err error) {
				if err != nil {
					failed++
					fmt.Printf("%-28s ko (%v)\n", name, err)
					return
				}
				if value != "" {
					fmt.Printf("%-28s ok (%s)\n", name, value)
					return
				}
				fmt.Printf("%-28s ok\n", name)
			}

			_, err = exec.LookPath(cfg.Tools.Metadata)
			report("metadata tool", cfg.Tools.Metadata, err)

			ingest := pdal.Tool{Binary: cfg.Tools.Ingest, Runner: tool.Runner{}}
			ingestVersion, err := ingest.Version(ctx)
			report("ingestion tool", ingestVersion, err)

			session, err := pgclient.Open(host, user, database)
			if err != nil {
				return err
			}
			defer session.Close()

			serverVersion, err := session.QueryString(ctx, "SHOW server_version")
			report("PostgreSQL", serverVersion, err)

			for _, extension := range []string{"postgis", "pointcloud", "pointcloud_postgis"} {
				extensionVersion, err := session.QueryString(ctx, fmt.Sprintf(
					"SELECT default_version FROM pg_available_extensions WHERE name = '%s'", extension))
				report(extension+" extension", extensionVersion, err)
			}

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}
