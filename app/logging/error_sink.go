// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ErrorSink receives errors that terminate a command, in addition to the
// regular log output.
type ErrorSink interface {
	Report(err error)
}

// NopSink discards reports.
type NopSink struct{}

func (NopSink) Report(error) {}

// SyslogWriter is the subset of *syslog.Writer the syslog sink needs.
type SyslogWriter interface {
	zerolog.SyslogWriter
	io.Closer
}

// SyslogSink writes each report to syslog. The connection is opened for a
// single report and closed right after it.
type SyslogSink struct {
	tag  string
	open func(tag string) (SyslogWriter, error)
}

// Report sends err at error priority. Failing to reach syslog is silent:
// the error has already been logged to standard error.
func (s *SyslogSink) Report(err error) {
	if err == nil {
		return
	}
	w, openErr := s.open(s.tag)
	if openErr != nil {
		return
	}
	defer w.Close()

	logger := zerolog.New(zerolog.SyslogLevelWriter(w))
	logger.Error().Int("pid", os.Getpid()).Msg("error: " + err.Error())
}
