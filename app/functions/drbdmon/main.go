// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cloudzero/drbdmon/app/build"
	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/domain/report"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/check"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/env"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/show"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/snap"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/watch"
	"github.com/cloudzero/drbdmon/app/logging"
)

const (
	appName = "drbdmon"
	// Invoked under this name the binary behaves as a Nagios plugin and runs
	// check without a command word.
	pluginName = "check_drbd"
)

// Process exit statuses besides the plugin tiers.
const (
	exitOK          = 0
	exitDelivery    = 1
	exitConfigError = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, env.Default(os.Stdout, os.Stderr))
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, e *env.Env) int {
	if filepath.Base(args[0]) == pluginName {
		args = pluginArgs(args)
	}
	err := newApp(e).RunContext(ctx, args)
	code := exitCode(err)

	var ec cli.ExitCoder
	if err != nil && !errors.As(err, &ec) {
		if e.Logger != nil {
			e.Logger.Error().Err(err).Int("exit_code", code).Msg(appName + " failed")
		} else {
			stderr := e.Stderr
			if stderr == nil {
				stderr = os.Stderr
			}
			fmt.Fprintf(stderr, "%s: error: %v\n", appName, err)
		}
		if e.Sink != nil {
			e.Sink.Report(err)
		}
	}
	return code
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ec):
		return ec.ExitCode()
	case errors.Is(err, report.ErrDelivery):
		return exitDelivery
	default:
		return exitConfigError
	}
}

func newApp(e *env.Env) *cli.App {
	app := &cli.App{
		Name:     appName,
		Version:  fmt.Sprintf("%s %s/%s", build.Version(), runtime.GOOS, runtime.GOARCH),
		Compiled: time.Now(),
		Authors: []*cli.Author{
			{Name: build.AuthorName, Email: build.AuthorEmail},
		},
		Copyright:            build.Copyright,
		Usage:                "DRBD replication health monitor",
		EnableBashCompletion: true,
		Writer:               e.Stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: env.FlagConfig, Usage: "configuration file (default $HOME/.drbdmon/config.yml)"},
			&cli.StringFlag{Name: env.FlagDrbdadm, Aliases: []string{"D"}, Usage: "path to the drbdadm binary"},
			&cli.StringFlag{Name: env.FlagProcDRBD, Aliases: []string{"P"}, Usage: "path to /proc/drbd"},
			&cli.StringFlag{Name: env.FlagXMLDump, Aliases: []string{"X"}, Usage: "read 'drbdadm dump-xml' output from this file"},
			&cli.StringFlag{Name: env.FlagHostname, Aliases: []string{"H"}, Usage: "local hostname as used in the DRBD configuration"},
			&cli.BoolFlag{Name: env.FlagDebug, Aliases: []string{"d"}, Usage: "debug mode: verbose logging, no syslog"},
			&cli.StringFlag{Name: env.FlagLogLevel, Usage: "the log level"},
		},
		Before: func(c *cli.Context) error {
			return setup(c, e)
		},
		// exit codes are mapped by run, never by the cli package
		ExitErrHandler: func(*cli.Context, error) {},
	}

	app.Commands = append(
		app.Commands,
		check.NewCommand(e),
		watch.NewCommand(e),
		show.NewCommand(e),
		snap.NewCommand(e),
	)

	return app
}

// setup loads the settings and builds the logger before any command runs.
func setup(c *cli.Context, e *env.Env) error {
	if c.Bool(env.FlagDebug) {
		e.Sink = logging.NopSink{}
	} else {
		e.Sink = e.NewSink(appName)
	}

	file := c.String(env.FlagConfig)
	if file == "" {
		file = config.DefaultConfigFile()
	}
	settings, err := config.NewSettings(file)
	if err != nil {
		return err
	}

	if c.IsSet(env.FlagDrbdadm) {
		settings.DRBD.Drbdadm = c.String(env.FlagDrbdadm)
	}
	if c.IsSet(env.FlagProcDRBD) {
		settings.DRBD.ProcDRBD = c.String(env.FlagProcDRBD)
	}
	if c.IsSet(env.FlagXMLDump) {
		settings.DRBD.XMLDump = c.String(env.FlagXMLDump)
	}
	if c.IsSet(env.FlagHostname) {
		settings.DRBD.Hostname = c.String(env.FlagHostname)
	}
	if c.IsSet(env.FlagDebug) {
		settings.Logging.Debug = c.Bool(env.FlagDebug)
	}
	if c.IsSet(env.FlagLogLevel) {
		settings.Logging.Level = c.String(env.FlagLogLevel)
	}
	if settings.Logging.Debug {
		settings.Logging.Level = zerolog.DebugLevel.String()
	}
	if !settings.SyslogEnabled() {
		e.Sink = logging.NopSink{}
	}
	e.Settings = settings

	opts := []logging.LoggerOpt{
		logging.WithLevel(settings.Logging.Level),
		logging.WithAttrs(func(zc zerolog.Context) zerolog.Context {
			return zc.Str("app", appName)
		}),
	}
	if e.Stderr != nil && e.Stderr != os.Stderr {
		opts = append(opts, logging.WithSink(e.Stderr))
	}
	logger, err := logging.NewLogger(opts...)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	e.Logger = logger
	c.Context = logger.WithContext(c.Context)

	if settings.Logging.Debug {
		if raw, err := settings.ToYAML(); err == nil {
			logger.Debug().Str("settings", string(raw)).Msg("effective configuration")
		}
	}
	return nil
}

// Global flags, by the way they appear on the command line.
var (
	globalValueFlags = map[string]bool{
		"--" + env.FlagConfig: true, "-" + env.FlagConfig: true,
		"--" + env.FlagDrbdadm: true, "-" + env.FlagDrbdadm: true, "-D": true,
		"--" + env.FlagProcDRBD: true, "-" + env.FlagProcDRBD: true, "-P": true,
		"--" + env.FlagXMLDump: true, "-" + env.FlagXMLDump: true, "-X": true,
		"--" + env.FlagHostname: true, "-" + env.FlagHostname: true, "-H": true,
		"--" + env.FlagLogLevel: true, "-" + env.FlagLogLevel: true,
	}
	globalBoolFlags = map[string]bool{
		"--" + env.FlagDebug: true, "-" + env.FlagDebug: true, "-d": true,
	}
)

// pluginArgs inserts the check command after the leading global flags, so
// that "check_drbd [global flags] [check flags]" works.
func pluginArgs(args []string) []string {
	i := 1
scan:
	for i < len(args) {
		name, _, inline := strings.Cut(args[i], "=")
		switch {
		case globalValueFlags[name] && !inline:
			i += 2
		case globalValueFlags[name] || globalBoolFlags[name]:
			i++
		default:
			break scan
		}
	}
	if i < len(args) && args[i] == "check" {
		return args
	}
	if i > len(args) {
		i = len(args)
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[:i]...)
	out = append(out, "check")
	return append(out, args[i:]...)
}
