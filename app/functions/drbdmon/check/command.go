// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package check implements the check command: one health verdict for all
// resources, printed as a Nagios plugin result or submitted passively.
package check

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/domain/health"
	"github.com/cloudzero/drbdmon/app/domain/metrics"
	"github.com/cloudzero/drbdmon/app/domain/report"
	"github.com/cloudzero/drbdmon/app/functions/drbdmon/env"
	"github.com/cloudzero/drbdmon/app/types"
)

const (
	FlagMonitor         = "monitor"
	FlagMode            = "mode"
	FlagChannel         = "channel"
	FlagNSCAHostname    = "nsca_hostname"
	FlagNSCAPort        = "nsca_port"
	FlagSvcDescr        = "svc_descr"
	FlagSvcHostname     = "svc_hostname"
	FlagTimeout         = "timeout"
	FlagPassword        = "password"
	FlagEncryption      = "encryption"
	FlagNRDPURL         = "nrdp_url"
	FlagNRDPToken       = "nrdp_token"
	FlagMetricsTextfile = "metrics-textfile"

	monitorNagios = "nagios"
)

func NewCommand(e *env.Env) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "perform the health check",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: FlagMonitor, Aliases: []string{"M"}, Usage: "monitoring system", Value: monitorNagios},
			&cli.StringFlag{Name: FlagMode, Aliases: []string{"m"}, Usage: "monitoring mode: active or passive"},
			&cli.StringFlag{Name: FlagChannel, Usage: "passive channel: nsca or nrdp"},
			&cli.StringFlag{Name: FlagNSCAHostname, Aliases: []string{"H", "nsca-hostname"}, Usage: "NSCA host to send passive checks to"},
			&cli.IntFlag{Name: FlagNSCAPort, Aliases: []string{"nsca-port"}, Usage: "NSCA port"},
			&cli.StringFlag{Name: FlagSvcDescr, Aliases: []string{"S", "svc-descr"}, Usage: "service description"},
			&cli.StringFlag{Name: FlagSvcHostname, Aliases: []string{"svc-hostname"}, Usage: "service hostname (defaults to the DRBD hostname)"},
			&cli.DurationFlag{Name: FlagTimeout, Usage: "timeout for the passive submission"},
			&cli.StringFlag{Name: FlagPassword, Usage: "NSCA password"},
			&cli.IntFlag{Name: FlagEncryption, Usage: "NSCA encryption method (0 none, 1 xor)"},
			&cli.StringFlag{Name: FlagNRDPURL, Aliases: []string{"nrdp-url"}, Usage: "NRDP endpoint"},
			&cli.StringFlag{Name: FlagNRDPToken, Aliases: []string{"nrdp-token"}, Usage: "NRDP token"},
			&cli.StringFlag{Name: FlagMetricsTextfile, Usage: "also write the result in Prometheus text format to this file"},
		},
		Action: func(c *cli.Context) error {
			return run(c, e)
		},
	}
}

func applyFlags(c *cli.Context, m *config.Monitor, mx *config.Metrics) {
	if c.IsSet(FlagMode) {
		m.Mode = c.String(FlagMode)
	}
	if c.IsSet(FlagChannel) {
		m.Channel = c.String(FlagChannel)
	}
	if c.IsSet(FlagNSCAHostname) {
		m.Host = c.String(FlagNSCAHostname)
	}
	if c.IsSet(FlagNSCAPort) {
		m.Port = c.Int(FlagNSCAPort)
	}
	if c.IsSet(FlagSvcDescr) {
		m.Service = c.String(FlagSvcDescr)
	}
	if c.IsSet(FlagSvcHostname) {
		m.ServiceHost = c.String(FlagSvcHostname)
	}
	if c.IsSet(FlagTimeout) {
		m.Timeout = c.Duration(FlagTimeout)
	}
	if c.IsSet(FlagPassword) {
		m.Password = c.String(FlagPassword)
	}
	if c.IsSet(FlagEncryption) {
		m.Encryption = c.Int(FlagEncryption)
	}
	if c.IsSet(FlagNRDPURL) {
		m.NRDPURL = c.String(FlagNRDPURL)
	}
	if c.IsSet(FlagNRDPToken) {
		m.NRDPToken = c.String(FlagNRDPToken)
	}
	if c.IsSet(FlagMetricsTextfile) {
		mx.Textfile = c.String(FlagMetricsTextfile)
	}
}

func run(c *cli.Context, e *env.Env) error {
	s := e.Settings
	if monitor := c.String(FlagMonitor); monitor != monitorNagios {
		return fmt.Errorf("%w: unsupported monitoring system %q", config.ErrConfiguration, monitor)
	}

	applyFlags(c, &s.Monitor, &s.Metrics)
	if err := s.Validate(); err != nil {
		return err
	}
	if err := s.ValidatePassive(); err != nil {
		return err
	}

	// the check runs to completion once started
	ctx := context.WithoutCancel(c.Context)
	logger := log.Ctx(ctx)

	resources, err := e.NewProvider(s.DRBD).Snapshot(ctx)
	var result types.CheckResult
	if err != nil {
		logger.Warn().Err(err).Msg("snapshot failed")
		result = health.Unknown(err)
	} else {
		result = health.Aggregate(resources)
	}
	logger.Debug().Str("tier", result.Tier.String()).Str("message", result.Message).Msg("check result")

	if s.Metrics.Textfile != "" {
		exporter := metrics.NewExporter()
		exporter.Record(resources, result, e.Now())
		if err := exporter.WriteTextfile(s.Metrics.Textfile); err != nil {
			logger.Error().Err(err).Msg("failed to write metrics textfile")
		}
	}

	var submitter report.Submitter
	if s.Monitor.Passive() {
		submitter = e.NewSubmitter(ctx, s.Monitor)
	}

	outcome, err := report.NewReporter(e.Stdout, submitter).Report(ctx, result, report.Options{
		Passive: s.Monitor.Passive(),
		Host:    s.Monitor.ServiceHost,
		Service: s.Monitor.Service,
	})
	if err != nil {
		return err
	}
	if outcome.ExitCode != 0 {
		return cli.Exit("", outcome.ExitCode)
	}
	return nil
}
