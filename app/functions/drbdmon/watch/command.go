// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package watch implements the watch command.
package watch

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/domain/watch"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/env"
)

const (
	FlagResource = "resource"
	FlagCState   = "cstate"
	FlagDState   = "dstate"
)

func NewCommand(e *env.Env) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "print matching resources at a given interval",
		ArgsUsage: "[interval [count]]",
		Description: "interval is in seconds (default 60); count is the number of reports, " +
			"unbounded when omitted. Without filters, resources whose connection state " +
			"contains Sync or whose disk state contains Inconsistent are printed.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: FlagResource, Aliases: []string{"r"}, Usage: "resource name (exact)"},
			&cli.StringFlag{Name: FlagCState, Aliases: []string{"c"}, Usage: "connection state pattern (partial match)"},
			&cli.StringFlag{Name: FlagDState, Aliases: []string{"d"}, Usage: "disk state pattern (partial match)"},
		},
		Action: func(c *cli.Context) error {
			return run(c, e)
		},
	}
}

func run(c *cli.Context, e *env.Env) error {
	s := e.Settings
	if err := applyArgs(c, &s.Watch); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	filter, err := watch.NewFilter(s.Watch.CState, s.Watch.DState, s.Watch.Resource)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	poller := watch.NewPoller(e.NewProvider(s.DRBD), filter, s.Watch.Interval, s.Watch.Count, e.Stdout,
		watch.WithAfter(e.After))
	return poller.Run(c.Context)
}

func applyArgs(c *cli.Context, w *config.Watch) error {
	if c.IsSet(FlagResource) {
		w.Resource = c.String(FlagResource)
	}
	if c.IsSet(FlagCState) {
		w.CState = c.String(FlagCState)
	}
	if c.IsSet(FlagDState) {
		w.DState = c.String(FlagDState)
	}

	args := c.Args()
	if args.Len() > 2 {
		return fmt.Errorf("%w: unexpected arguments %v", config.ErrConfiguration, args.Slice()[2:])
	}
	if v := args.Get(0); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return fmt.Errorf("%w: interval must be a positive number of seconds, got %q", config.ErrConfiguration, v)
		}
		w.Interval = time.Duration(secs) * time.Second
	}
	if v := args.Get(1); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: count must be a number, got %q", config.ErrConfiguration, v)
		}
		w.Count = count
	}
	return nil
}
