// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package snap implements the snap command.
package snap

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cloudzero/drbdmon/app/domain/snap"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/env"
)

const (
	FlagSuffix    = "suffix"
	FlagDirectory = "directory"
)

func NewCommand(e *env.Env) *cli.Command {
	return &cli.Command{
		Name:  "snap",
		Usage: "save the contents of /proc/drbd and 'drbdadm dump-xml'",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: FlagSuffix, Aliases: []string{"S"}, Usage: "file suffix (defaults to the process id)"},
			&cli.StringFlag{Name: FlagDirectory, Aliases: []string{"D"}, Usage: "output directory", Value: snap.DefaultDirectory},
		},
		Action: func(c *cli.Context) error {
			if err := e.Settings.Validate(); err != nil {
				return err
			}
			files := snap.PathsFor(c.String(FlagDirectory), c.String(FlagSuffix))
			if err := snap.Take(c.Context, e.NewProvider(e.Settings.DRBD), files); err != nil {
				return err
			}
			_, err := fmt.Fprintf(e.Stdout, "%s\n%s\n", files.Proc, files.XML)
			return err
		},
	}
}
