// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package show implements the show command.
package show

import (
	"fmt"

	"github.com/urfave/cli/v2"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/env"
)

const componentVersion = "version"

func NewCommand(e *env.Env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "display resource information",
		ArgsUsage: "[resource|version]",
		Action: func(c *cli.Context) error {
			return run(c, e)
		},
	}
}

func run(c *cli.Context, e *env.Env) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("%w: show takes at most one argument", config.ErrConfiguration)
	}
	if err := e.Settings.Validate(); err != nil {
		return err
	}

	provider := e.NewProvider(e.Settings.DRBD)
	component := c.Args().First()

	if component == componentVersion {
		v, err := provider.Version(c.Context)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(e.Stdout, v)
		return err
	}

	resources, err := provider.Snapshot(c.Context)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if component != "" && r.Name != component {
			continue
		}
		if _, err := fmt.Fprintln(e.Stdout, r.String()); err != nil {
			return err
		}
	}
	return nil
}
