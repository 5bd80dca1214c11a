// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package env carries what the drbdmon commands share: settings, output
// streams, and the constructors for the DRBD provider and passive channels.
// Tests swap the constructors for fakes.
package env

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/domain/drbd"
	"github.com/cloudzero/drbdmon/app/domain/report"
	"github.com/cloudzero/drbdmon/app/domain/report/nrdp"
	"github.com/cloudzero/drbdmon/app/domain/report/nsca"
	"github.com/cloudzero/drbdmon/app/logging"
	"github.com/cloudzero/drbdmon/app/types"
)

// Global flag names.
const (
	FlagConfig   = "config"
	FlagDrbdadm  = "drbdadm"
	FlagProcDRBD = "procdrbd"
	FlagXMLDump  = "xmldump"
	FlagHostname = "hostname"
	FlagDebug    = "debug"
	FlagLogLevel = "log-level"
)

// Provider is everything the commands need from the DRBD layer.
type Provider interface {
	types.SnapshotProvider
	Raw(ctx context.Context) (drbd.Raw, error)
	Version(ctx context.Context) (string, error)
}

// Env is shared by all commands of one invocation.
type Env struct {
	Stdout io.Writer
	// Stderr receives log output. Nil means the process standard error.
	Stderr io.Writer

	// Settings is loaded by the application before any command runs.
	Settings *config.Settings
	// Sink receives the error that ends the invocation.
	Sink logging.ErrorSink
	// Logger is created from Settings.
	Logger *zerolog.Logger

	NewProvider  func(cfg config.DRBD) Provider
	NewSubmitter func(ctx context.Context, cfg config.Monitor) report.Submitter
	NewSink      func(tag string) logging.ErrorSink

	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// Default wires the real implementations.
func Default(stdout, stderr io.Writer) *Env {
	return &Env{
		Stdout: stdout,
		Stderr: stderr,
		NewProvider: func(cfg config.DRBD) Provider {
			return drbd.NewProvider(cfg)
		},
		NewSubmitter: NewSubmitter,
		NewSink: func(tag string) logging.ErrorSink {
			return logging.NewSyslogSink(tag)
		},
		Now:   time.Now,
		After: time.After,
	}
}

// NewSubmitter returns the passive channel selected in cfg.
func NewSubmitter(ctx context.Context, cfg config.Monitor) report.Submitter {
	if cfg.Channel == config.ChannelNRDP {
		return nrdp.NewClient(ctx, cfg)
	}
	return nsca.NewClient(cfg)
}
