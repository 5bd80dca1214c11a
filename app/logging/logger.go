// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the zerolog loggers used across drbdmon and provides
// the error reporting sinks used when a command fails.
//
// Standard output is reserved for plugin and report output, so the default
// sink is standard error: human readable when attached to a terminal, JSON
// lines otherwise.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cloudzero/drbdmon/app/build"
)

// LoggerOpt configures NewLogger.
type LoggerOpt func(cfg *loggerConfig) error

type loggerConfig struct {
	level   zerolog.Level
	sinks   []io.Writer
	attrs   []func(zerolog.Context) zerolog.Context
	version string
}

// WithLevel sets the minimum level. An empty string keeps the default (info).
func WithLevel(level string) LoggerOpt {
	return func(cfg *loggerConfig) error {
		level = strings.TrimSpace(strings.ToLower(level))
		if level == "" {
			return nil
		}
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", level)
		}
		cfg.level = lvl
		return nil
	}
}

// WithSink adds an output. When at least one sink is given the default
// standard error sink is not used.
func WithSink(w io.Writer) LoggerOpt {
	return func(cfg *loggerConfig) error {
		if w == nil {
			return errors.New("nil sink")
		}
		cfg.sinks = append(cfg.sinks, w)
		return nil
	}
}

// WithAttrs adds fields to every record.
func WithAttrs(fn func(zerolog.Context) zerolog.Context) LoggerOpt {
	return func(cfg *loggerConfig) error {
		cfg.attrs = append(cfg.attrs, fn)
		return nil
	}
}

// WithVersion overrides the version field.
func WithVersion(version string) LoggerOpt {
	return func(cfg *loggerConfig) error {
		cfg.version = version
		return nil
	}
}

// NewLogger creates a logger. Records carry a timestamp and the build version.
func NewLogger(opts ...LoggerOpt) (*zerolog.Logger, error) {
	cfg := &loggerConfig{
		level:   zerolog.InfoLevel,
		version: build.GetVersion(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.sinks) == 0 {
		cfg.sinks = append(cfg.sinks, stderrSink())
	}

	var out io.Writer = cfg.sinks[0]
	if len(cfg.sinks) > 1 {
		out = zerolog.MultiLevelWriter(cfg.sinks...)
	}

	zctx := zerolog.New(out).
		Level(cfg.level).
		With().
		Timestamp().
		Str("version", cfg.version)
	for _, fn := range cfg.attrs {
		zctx = fn(zctx)
	}

	logger := zctx.Logger()
	return &logger, nil
}

func stderrSink() io.Writer {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return os.Stderr
}
